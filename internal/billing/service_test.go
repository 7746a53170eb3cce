package billing

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quickskil/launchpad-portal/pkg/mailer"
	"github.com/quickskil/launchpad-portal/pkg/payments"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, r *PaymentRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*PaymentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentRequest), args.Error(1)
}

func (m *mockRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]PaymentRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PaymentRequest), args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, r *PaymentRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) CreateCheckoutSession(ctx context.Context, params payments.CheckoutParams) (*payments.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.CheckoutSession), args.Error(1)
}

func (m *mockProcessor) ListPaymentIntents(ctx context.Context, filter payments.IntentFilter) ([]payments.PaymentRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payments.PaymentRecord), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) (mailer.Result, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(mailer.Result), args.Error(1)
}

func newTestService(repo *mockRepository, processor *mockProcessor, mail *mockMailer) *Service {
	return NewService(repo, processor, mail, zap.NewNop())
}

func TestCreateRejectsInvalidAmounts(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockProcessor), new(mockMailer))

	for _, amount := range []float64{0, -5, math.Inf(1), math.Inf(-1), math.NaN(), maxRequestAmount + 1, 1e17} {
		_, err := svc.Create(context.Background(), CreateRequest{
			UserID: uuid.New(),
			Amount: amount,
		})
		var invalid *InvalidAmountError
		require.ErrorAs(t, err, &invalid, "amount %v", amount)
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateConvertsDollarsToCentsOnce(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockProcessor), new(mockMailer))

	repo.On("Create", mock.Anything, mock.AnythingOfType("*billing.PaymentRequest")).Return(nil)

	record, err := svc.Create(context.Background(), CreateRequest{
		UserID:      uuid.New(),
		Amount:      400.00,
		Description: "Website build balance",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(40000), record.AmountCents)
	assert.Equal(t, "USD", record.Currency)
	assert.Equal(t, RequestStatusPending, record.Status)
	assert.Nil(t, record.CheckoutURL)
	assert.False(t, record.Sample)
}

func TestCreateWithCheckoutCarriesMetadata(t *testing.T) {
	repo := new(mockRepository)
	processor := new(mockProcessor)
	svc := newTestService(repo, processor, new(mockMailer))
	userID := uuid.New()
	projectID := uuid.New()

	processor.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p payments.CheckoutParams) bool {
		return p.AmountCents == 9900 &&
			p.Metadata[payments.MetaUserID] == userID.String() &&
			p.Metadata[payments.MetaProjectID] == projectID.String() &&
			p.Metadata[payments.MetaType] == string(payments.TypeKickoffDeposit)
	})).Return(&payments.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/c/cs_123"}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*billing.PaymentRequest")).Return(nil)

	record, err := svc.Create(context.Background(), CreateRequest{
		UserID:           userID,
		ProjectID:        &projectID,
		Amount:           99.00,
		Type:             payments.TypeKickoffDeposit,
		GenerateCheckout: true,
	})

	require.NoError(t, err)
	require.NotNil(t, record.CheckoutURL)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_123", *record.CheckoutURL)
	assert.False(t, record.Sample)
	processor.AssertExpectations(t)
}

func TestCreateDepositRequestMintsKickoffCheckout(t *testing.T) {
	repo := new(mockRepository)
	processor := new(mockProcessor)
	svc := newTestService(repo, processor, new(mockMailer))
	userID := uuid.New()
	projectID := uuid.New()

	processor.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p payments.CheckoutParams) bool {
		return p.AmountCents == 9900 &&
			p.Metadata[payments.MetaUserID] == userID.String() &&
			p.Metadata[payments.MetaProjectID] == projectID.String() &&
			p.Metadata[payments.MetaType] == string(payments.TypeKickoffDeposit)
	})).Return(&payments.CheckoutSession{ID: "cs_dep", URL: "https://checkout.stripe.com/c/cs_dep"}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*billing.PaymentRequest")).Return(nil)

	record, err := svc.CreateDepositRequest(context.Background(), userID, projectID, 9900, "Kickoff deposit: Website")

	require.NoError(t, err)
	assert.Equal(t, int64(9900), record.AmountCents)
	require.NotNil(t, record.ProjectID)
	assert.Equal(t, projectID, *record.ProjectID)
	require.NotNil(t, record.CheckoutURL)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_dep", *record.CheckoutURL)
	processor.AssertExpectations(t)
}

func TestCreateFallsBackToSampleCheckout(t *testing.T) {
	repo := new(mockRepository)
	processor := new(mockProcessor)
	svc := newTestService(repo, processor, new(mockMailer))

	processor.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(nil, &payments.ErrUnavailable{Cause: errors.New("no api key")})
	repo.On("Create", mock.Anything, mock.AnythingOfType("*billing.PaymentRequest")).Return(nil)

	record, err := svc.Create(context.Background(), CreateRequest{
		UserID:           uuid.New(),
		Amount:           99.00,
		GenerateCheckout: true,
	})

	require.NoError(t, err, "processor trouble must not fail the create")
	assert.True(t, record.Sample)
	require.NotNil(t, record.CheckoutURL)
	assert.True(t, strings.HasPrefix(*record.CheckoutURL, "https://checkout.example.com/pay/"))
}

func TestUpdateRevalidatesAmount(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockProcessor), new(mockMailer))
	record := &PaymentRequest{ID: uuid.New(), AmountCents: 9900, Status: RequestStatusPending}

	repo.On("GetByID", mock.Anything, record.ID).Return(record, nil)

	for _, bad := range []float64{-10, 0, maxRequestAmount * 2, 1e17} {
		amount := bad
		_, err := svc.Update(context.Background(), record.ID, UpdateRequest{Amount: &amount})
		var invalid *InvalidAmountError
		require.ErrorAs(t, err, &invalid, "amount %v", bad)
	}
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockProcessor), new(mockMailer))
	record := &PaymentRequest{
		ID:          uuid.New(),
		AmountCents: 9900,
		Currency:    "USD",
		Description: "Kickoff deposit",
		Status:      RequestStatusPending,
	}

	repo.On("GetByID", mock.Anything, record.ID).Return(record, nil)
	repo.On("Update", mock.Anything, record).Return(nil)

	desc := "Kickoff deposit (revised)"
	got, err := svc.Update(context.Background(), record.ID, UpdateRequest{Description: &desc})

	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)
	assert.Equal(t, int64(9900), got.AmountCents)
	assert.Equal(t, RequestStatusPending, got.Status)
}

func TestSendEmailRecordsContentAndFlipsStatus(t *testing.T) {
	repo := new(mockRepository)
	mail := new(mockMailer)
	svc := newTestService(repo, new(mockProcessor), mail)
	link := "https://checkout.stripe.com/c/cs_456"
	record := &PaymentRequest{ID: uuid.New(), AmountCents: 40000, Status: RequestStatusPending, CheckoutURL: &link}

	repo.On("GetByID", mock.Anything, record.ID).Return(record, nil)
	repo.On("Update", mock.Anything, record).Return(nil)
	mail.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To == "client@example.com" && msg.Link == link
	})).Return(mailer.Result{MessageID: "msg-1"}, nil)

	result, err := svc.SendEmail(context.Background(), record.ID, "client@example.com", "Your balance is ready", "Here's the final invoice.", true)

	require.NoError(t, err)
	assert.False(t, result.Sample)
	assert.Equal(t, RequestStatusSent, result.Request.Status)
	require.NotNil(t, result.Request.LastEmailSubject)
	assert.Equal(t, "Your balance is ready", *result.Request.LastEmailSubject)
	assert.NotNil(t, result.Request.LastEmailedAt)
}

func TestSendEmailMissingLinkIsNotFatal(t *testing.T) {
	repo := new(mockRepository)
	mail := new(mockMailer)
	svc := newTestService(repo, new(mockProcessor), mail)
	record := &PaymentRequest{ID: uuid.New(), AmountCents: 40000, Status: RequestStatusSent}

	repo.On("GetByID", mock.Anything, record.ID).Return(record, nil)
	repo.On("Update", mock.Anything, record).Return(nil)
	mail.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.Link == ""
	})).Return(mailer.Result{Sample: true}, nil)

	result, err := svc.SendEmail(context.Background(), record.ID, "client@example.com", "Reminder", "Still pending.", true)

	require.NoError(t, err)
	assert.True(t, result.Sample)
	assert.Equal(t, RequestStatusSent, result.Request.Status, "already-sent status stays put")
}

func TestHistoryMergesRequestsAndProcessorRecords(t *testing.T) {
	repo := new(mockRepository)
	processor := new(mockProcessor)
	svc := newTestService(repo, processor, new(mockMailer))
	userID := uuid.New()

	repo.On("ListByUser", mock.Anything, userID).Return([]PaymentRequest{
		{ID: uuid.New(), UserID: userID, AmountCents: 9900},
	}, nil)
	processor.On("ListPaymentIntents", mock.Anything, payments.IntentFilter{UserID: userID.String()}).
		Return([]payments.PaymentRecord{
			{ID: "pi_1", AmountCents: 9900, Status: "succeeded"},
		}, nil)

	history, err := svc.History(context.Background(), userID)

	require.NoError(t, err)
	assert.Len(t, history.Requests, 1)
	assert.Len(t, history.Payments, 1)
	assert.False(t, history.Sample)
}

func TestHistoryFallsBackToSampleRecords(t *testing.T) {
	repo := new(mockRepository)
	processor := new(mockProcessor)
	svc := newTestService(repo, processor, new(mockMailer))
	userID := uuid.New()

	repo.On("ListByUser", mock.Anything, userID).Return([]PaymentRequest{}, nil)
	processor.On("ListPaymentIntents", mock.Anything, mock.Anything).
		Return(nil, &payments.ErrUnavailable{Cause: errors.New("timeout")})

	history, err := svc.History(context.Background(), userID)

	require.NoError(t, err)
	assert.True(t, history.Sample)
	assert.NotEmpty(t, history.Payments)
}

func TestGetNotFound(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockProcessor), new(mockMailer))
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, ErrNotFound)

	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoicePDFRendersRecord(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockProcessor), new(mockMailer))
	record := &PaymentRequest{
		ID:          uuid.New(),
		AmountCents: 252090,
		Currency:    "USD",
		Description: "Full Funnel launch balance",
		Status:      RequestStatusSent,
	}

	repo.On("GetByID", mock.Anything, record.ID).Return(record, nil)

	data, err := svc.InvoicePDF(context.Background(), record.ID, "Ray's Roofing", "ray@example.com")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
