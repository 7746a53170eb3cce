package billing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickskil/launchpad-portal/pkg/mailer"
	"github.com/quickskil/launchpad-portal/pkg/payments"
	"github.com/quickskil/launchpad-portal/pkg/pdf"
)

// maxRequestAmount caps a single request at one million dollars. Beyond any
// real invoice here, and it keeps the cents conversion inside int64 range.
const maxRequestAmount = 1_000_000.0

// InvalidAmountError reports a non-positive, non-finite, or out-of-range
// amount. Fatal to the call; no record is created or updated.
type InvalidAmountError struct {
	Amount float64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("payment amount must be a positive number up to %v, got %v", maxRequestAmount, e.Amount)
}

// validAmount bounds the dollar amount. NaN fails both comparisons, and the
// ceiling rejects the infinities along with values whose cents conversion
// would overflow.
func validAmount(amount float64) bool {
	return amount > 0 && amount <= maxRequestAmount
}

// Service runs the payment-request lifecycle and the reconciliation read
// path. Processor and mailer failures never fail an operation: they
// downgrade to sample results carried on the returned records.
type Service struct {
	repo      Repository
	processor payments.Client
	mail      mailer.Mailer
	logger    *zap.Logger
}

func NewService(repo Repository, processor payments.Client, mail mailer.Mailer, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		processor: processor,
		mail:      mail,
		logger:    logger,
	}
}

// CreateRequest is the input for one payment request. Amount is dollars as
// submitted by staff; it is validated and converted to cents exactly once.
type CreateRequest struct {
	UserID           uuid.UUID
	ProjectID        *uuid.UUID
	Amount           float64
	Currency         string
	Description      string
	Type             payments.RecordType
	GenerateCheckout bool
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*PaymentRequest, error) {
	if !validAmount(req.Amount) {
		return nil, &InvalidAmountError{Amount: req.Amount}
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	recordType := req.Type
	if recordType == "" {
		recordType = payments.TypeOther
	}

	record := &PaymentRequest{
		UserID:      req.UserID,
		ProjectID:   req.ProjectID,
		AmountCents: int64(math.Round(req.Amount * 100)),
		Currency:    currency,
		Description: req.Description,
		Status:      RequestStatusPending,
	}

	if req.GenerateCheckout {
		metadata := map[string]string{
			payments.MetaUserID: req.UserID.String(),
			payments.MetaType:   string(recordType),
		}
		if req.ProjectID != nil {
			metadata[payments.MetaProjectID] = req.ProjectID.String()
		}
		session, err := s.processor.CreateCheckoutSession(ctx, payments.CheckoutParams{
			AmountCents: record.AmountCents,
			Currency:    currency,
			Description: req.Description,
			Metadata:    metadata,
		})
		if err != nil {
			// Processor trouble must not fail the create: fall back to a
			// clearly-flagged demo link.
			s.logger.Warn("checkout creation failed, falling back to sample link", zap.Error(err))
			session, _ = payments.NewSampleClient().CreateCheckoutSession(ctx, payments.CheckoutParams{
				AmountCents: record.AmountCents,
				Currency:    currency,
				Description: req.Description,
			})
		}
		record.CheckoutURL = &session.URL
		record.CheckoutSessionID = &session.ID
		record.Sample = session.Sample
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("payment request created",
		zap.String("request_id", record.ID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.Int64("amount_cents", record.AmountCents),
		zap.Bool("sample", record.Sample))
	return record, nil
}

// CreateDepositRequest is the client-deposit flow's entry into the lifecycle:
// it mints a kickoff-deposit request for the project's snapshot amount with a
// checkout link attached. Staff-created requests go through Create directly.
func (s *Service) CreateDepositRequest(ctx context.Context, userID, projectID uuid.UUID, amountCents int64, description string) (*PaymentRequest, error) {
	return s.Create(ctx, CreateRequest{
		UserID:           userID,
		ProjectID:        &projectID,
		Amount:           float64(amountCents) / 100,
		Description:      description,
		Type:             payments.TypeKickoffDeposit,
		GenerateCheckout: true,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PaymentRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]PaymentRequest, error) {
	return s.repo.ListByUser(ctx, userID)
}

// UpdateRequest carries partial edits; nil fields are left alone. Updating
// never re-triggers checkout creation by itself.
type UpdateRequest struct {
	Amount           *float64
	Currency         *string
	Description      *string
	Status           *RequestStatus
	CheckoutURL      *string
	LastEmailSubject *string
	LastEmailMessage *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*PaymentRequest, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		if !validAmount(*req.Amount) {
			return nil, &InvalidAmountError{Amount: *req.Amount}
		}
		record.AmountCents = int64(math.Round(*req.Amount * 100))
	}
	if req.Currency != nil {
		record.Currency = *req.Currency
	}
	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.Status != nil {
		record.Status = *req.Status
	}
	if req.CheckoutURL != nil {
		record.CheckoutURL = req.CheckoutURL
	}
	if req.LastEmailSubject != nil {
		record.LastEmailSubject = req.LastEmailSubject
	}
	if req.LastEmailMessage != nil {
		record.LastEmailMessage = req.LastEmailMessage
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes the local record only; an already-issued checkout session
// stays live on the processor side.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// EmailResult reports a dispatched payment-request email.
type EmailResult struct {
	Request *PaymentRequest `json:"request"`
	Sample  bool            `json:"sample,omitempty"`
}

// SendEmail records the message as the request's last-sent content and
// dispatches it. A missing checkout link with includeLink=true is not an
// error; the message simply goes out without one.
func (s *Service) SendEmail(ctx context.Context, id uuid.UUID, to, subject, message string, includeLink bool) (*EmailResult, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	link := ""
	if includeLink && record.CheckoutURL != nil {
		link = *record.CheckoutURL
	}
	result, err := s.mail.Send(ctx, mailer.Message{
		To:      to,
		Subject: subject,
		Body:    message,
		Link:    link,
	})
	if err != nil {
		// Mailer contract says provider failures come back as sample
		// results; anything else is a programming error worth surfacing.
		return nil, err
	}

	now := time.Now()
	record.LastEmailSubject = &subject
	record.LastEmailMessage = &message
	record.LastEmailedAt = &now
	if record.Status == RequestStatusPending {
		record.Status = RequestStatusSent
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("payment request emailed",
		zap.String("request_id", id.String()),
		zap.Bool("sample", result.Sample))
	return &EmailResult{Request: record, Sample: result.Sample}, nil
}

// History is the reconciliation read model: locally-created requests and
// processor-confirmed payments for one client, side by side, never merged
// into one stored entity.
type History struct {
	Requests []PaymentRequest         `json:"requests"`
	Payments []payments.PaymentRecord `json:"payments"`
	Sample   bool                     `json:"sample,omitempty"`
}

func (s *Service) History(ctx context.Context, userID uuid.UUID) (*History, error) {
	requests, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.processor.ListPaymentIntents(ctx, payments.IntentFilter{UserID: userID.String()})
	if err != nil {
		s.logger.Warn("processor listing failed, falling back to sample records", zap.Error(err))
		records, _ = payments.NewSampleClient().ListPaymentIntents(ctx, payments.IntentFilter{UserID: userID.String()})
	}

	sample := false
	for _, r := range records {
		if r.Sample {
			sample = true
			break
		}
	}
	return &History{Requests: requests, Payments: records, Sample: sample}, nil
}

// InvoicePDF renders a payment request as a printable invoice.
func (s *Service) InvoicePDF(ctx context.Context, id uuid.UUID, clientName, clientEmail string) ([]byte, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	checkoutURL := ""
	if record.CheckoutURL != nil {
		checkoutURL = *record.CheckoutURL
	}
	return pdf.RenderInvoice(pdf.InvoiceData{
		Number:      "PR-" + record.ID.String()[:8],
		IssuedAt:    record.CreatedAt,
		ClientName:  clientName,
		ClientEmail: clientEmail,
		Description: record.Description,
		AmountCents: record.AmountCents,
		Currency:    record.Currency,
		Status:      string(record.Status),
		CheckoutURL: checkoutURL,
		Sample:      record.Sample,
	})
}
