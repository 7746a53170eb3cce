package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// sampleClient stands in for the processor when no credentials are
// configured. Every result it returns is flagged Sample so the UI can label
// demo data instead of hard-failing.
type sampleClient struct{}

// NewSampleClient returns the demo processor.
func NewSampleClient() Client {
	return &sampleClient{}
}

func (c *sampleClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	id := "cs_sample_" + uuid.NewString()[:8]
	return &CheckoutSession{
		ID:     id,
		URL:    fmt.Sprintf("https://checkout.example.com/pay/%s?amount=%d", id, params.AmountCents),
		Sample: true,
	}, nil
}

func (c *sampleClient) ListPaymentIntents(ctx context.Context, filter IntentFilter) ([]PaymentRecord, error) {
	now := time.Now()
	return []PaymentRecord{
		{
			ID:          "pi_sample_deposit",
			Type:        TypeKickoffDeposit,
			AmountCents: 9900,
			Currency:    "USD",
			Status:      "succeeded",
			ReceiptURL:  "https://receipts.example.com/pi_sample_deposit",
			UserID:      filter.UserID,
			Sample:      true,
			CreatedAt:   now.AddDate(0, 0, -14),
		},
		{
			ID:          "pi_sample_balance",
			Type:        TypeFinalBalance,
			AmountCents: 252090,
			Currency:    "USD",
			Status:      "succeeded",
			ReceiptURL:  "https://receipts.example.com/pi_sample_balance",
			UserID:      filter.UserID,
			Sample:      true,
			CreatedAt:   now.AddDate(0, 0, -2),
		},
	}, nil
}
