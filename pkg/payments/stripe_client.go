package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const stripeAPIBase = "https://api.stripe.com/v1"

// ErrUnavailable wraps any processor transport or API failure. Callers are
// expected to catch it and downgrade to a sample result.
type ErrUnavailable struct {
	Cause error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("payment processor unavailable: %v", e.Cause)
}

func (e *ErrUnavailable) Unwrap() error {
	return e.Cause
}

// New returns a Stripe-backed client when a secret key is configured and
// the sample client otherwise.
func New(secretKey string, logger *zap.Logger) Client {
	if secretKey == "" {
		logger.Warn("stripe secret key not configured, using sample payment client")
		return NewSampleClient()
	}
	return &stripeClient{
		secretKey: secretKey,
		baseURL:   stripeAPIBase,
		http:      &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
	}
}

type stripeClient struct {
	secretKey string
	baseURL   string
	http      *http.Client
	logger    *zap.Logger
}

type stripeSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeIntent struct {
	ID           string            `json:"id"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Created      int64             `json:"created"`
	Metadata     map[string]string `json:"metadata"`
	LatestCharge string            `json:"latest_charge"`
}

type stripeIntentList struct {
	Data []stripeIntent `json:"data"`
}

func (c *stripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(params.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.Description)
	for k, v := range params.Metadata {
		form.Set("payment_intent_data[metadata]["+k+"]", v)
	}

	var session stripeSession
	if err := c.post(ctx, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (c *stripeClient) ListPaymentIntents(ctx context.Context, filter IntentFilter) ([]PaymentRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var list stripeIntentList
	if err := c.get(ctx, "/payment_intents?limit="+strconv.Itoa(limit), &list); err != nil {
		return nil, err
	}

	// Stripe has no server-side metadata filter on this listing, so the
	// userId tag is applied here.
	records := make([]PaymentRecord, 0, len(list.Data))
	for _, intent := range list.Data {
		if filter.UserID != "" && intent.Metadata[MetaUserID] != filter.UserID {
			continue
		}
		records = append(records, PaymentRecord{
			ID:          intent.ID,
			Type:        recordType(intent.Metadata[MetaType]),
			AmountCents: intent.Amount,
			Currency:    strings.ToUpper(intent.Currency),
			Status:      intent.Status,
			ChargeID:    intent.LatestCharge,
			UserID:      intent.Metadata[MetaUserID],
			ProjectID:   intent.Metadata[MetaProjectID],
			CreatedAt:   time.Unix(intent.Created, 0),
		})
	}
	return records, nil
}

func recordType(tag string) RecordType {
	switch RecordType(tag) {
	case TypeKickoffDeposit, TypeFinalBalance:
		return RecordType(tag)
	default:
		return TypeOther
	}
}

func (c *stripeClient) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return &ErrUnavailable{Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *stripeClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &ErrUnavailable{Cause: err}
	}
	return c.do(req, out)
}

func (c *stripeClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return &ErrUnavailable{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.Warn("stripe request failed",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode))
		return &ErrUnavailable{Cause: fmt.Errorf("stripe returned %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ErrUnavailable{Cause: err}
	}
	return nil
}
