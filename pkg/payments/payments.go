package payments

import (
	"context"
	"time"
)

// RecordType tags a processor payment by its role in the launch pipeline.
type RecordType string

const (
	TypeKickoffDeposit RecordType = "kickoff-deposit"
	TypeFinalBalance   RecordType = "final-balance"
	TypeOther          RecordType = "other"
)

// Metadata keys attached to every checkout session and read back off
// payment intents during reconciliation.
const (
	MetaUserID    = "userId"
	MetaProjectID = "projectId"
	MetaType      = "type"
)

// CheckoutParams scopes one checkout session.
type CheckoutParams struct {
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// CheckoutSession is the processor-hosted payment page for one amount.
type CheckoutSession struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Sample bool   `json:"sample,omitempty"`
}

// PaymentRecord is processor truth about one payment. Never stored locally;
// only listed and reconciled against local payment requests.
type PaymentRecord struct {
	ID          string     `json:"id"`
	Type        RecordType `json:"type"`
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	ChargeID    string     `json:"charge_id,omitempty"`
	ReceiptURL  string     `json:"receipt_url,omitempty"`
	UserID      string     `json:"user_id,omitempty"`
	ProjectID   string     `json:"project_id,omitempty"`
	Sample      bool       `json:"sample,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IntentFilter narrows a payment-intent listing.
type IntentFilter struct {
	UserID string
	Limit  int
}

// Client is the payment-processor collaborator contract. Implementations
// must degrade to sample data when unconfigured rather than fail.
type Client interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	ListPaymentIntents(ctx context.Context, filter IntentFilter) ([]PaymentRecord, error)
}
