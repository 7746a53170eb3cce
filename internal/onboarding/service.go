package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickskil/launchpad-portal/internal/billing"
	"github.com/quickskil/launchpad-portal/internal/catalog"
	"github.com/quickskil/launchpad-portal/pkg/uploads"
)

// DepositBilling mints the kickoff-deposit payment request for a project.
// Satisfied by the billing service.
type DepositBilling interface {
	CreateDepositRequest(ctx context.Context, userID, projectID uuid.UUID, amountCents int64, description string) (*billing.PaymentRequest, error)
}

// Service runs the onboarding pipeline: every operation loads the project,
// applies one workflow or status transition, and saves atomically with any
// staged outbox events. Handlers translate the returned errors into the
// uniform {ok, message, sample} response shape.
type Service struct {
	repo    Repository
	catalog *catalog.Catalog
	assets  uploads.Store
	billing DepositBilling
	logger  *zap.Logger
}

func NewService(repo Repository, cat *catalog.Catalog, assets uploads.Store, billing DepositBilling, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		assets:  assets,
		billing: billing,
		logger:  logger,
	}
}

// StartProject creates a project at the welcome step.
func (s *Service) StartProject(ctx context.Context, clientID uuid.UUID) (*Project, error) {
	p := NewProject(clientID, s.catalog)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("onboarding project started",
		zap.String("project_id", p.ID.String()),
		zap.String("client_id", clientID.String()))
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListClientProjects(ctx context.Context, clientID uuid.UUID) ([]Project, error) {
	return s.repo.ListByClient(ctx, clientID)
}

// StepPrompt is the rendered display copy for the project's current step.
type StepPrompt struct {
	Step      Step   `json:"step"`
	StepIndex int    `json:"step_index"`
	Total     int    `json:"total_steps"`
	Prompt    string `json:"prompt"`
}

func (s *Service) Prompt(ctx context.Context, id uuid.UUID) (*StepPrompt, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StepPrompt{
		Step:      p.Step,
		StepIndex: p.StepIndex,
		Total:     TotalSteps,
		Prompt:    p.RenderPrompt(),
	}, nil
}

// SelectServices replaces the project's selection. An unknown key fails the
// call before anything is saved.
func (s *Service) SelectServices(ctx context.Context, id uuid.UUID, keys []string) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.SelectServices(s.catalog, keys); err != nil {
		return nil, err
	}
	p.TouchStatusOnClientSave()
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("services selected",
		zap.String("project_id", id.String()),
		zap.Strings("keys", keys),
		zap.Int64("deposit_now_cents", p.DepositNowCents),
		zap.Int64("balance_later_cents", p.BalanceLaterCents))
	return p, nil
}

func (s *Service) SubmitBusinessInfo(ctx context.Context, id uuid.UUID, info BusinessInfo) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.SetBusinessInfo(info)
	p.TouchStatusOnClientSave()
	return p, s.repo.Save(ctx, p)
}

func (s *Service) SubmitDesignSpecs(ctx context.Context, id uuid.UUID, specs DesignSpecs) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.SetDesignSpecs(specs)
	p.TouchStatusOnClientSave()
	return p, s.repo.Save(ctx, p)
}

const assetURLExpiry = 7 * 24 * time.Hour

func (s *Service) RecordUploads(ctx context.Context, id uuid.UUID, assets []UploadAsset) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		if assets[i].URL != "" || assets[i].Key == "" {
			continue
		}
		url, err := s.assets.PresignGet(ctx, assets[i].Key, assetURLExpiry)
		if err != nil {
			s.logger.Warn("failed to presign asset, storing key only",
				zap.String("key", assets[i].Key), zap.Error(err))
			continue
		}
		assets[i].URL = url
	}
	p.RecordUploads(assets)
	p.TouchStatusOnClientSave()
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("uploads recorded",
		zap.String("project_id", id.String()),
		zap.Int("added", len(assets)))
	return p, nil
}

var (
	// ErrDepositSettled rejects minting a checkout for an already-paid deposit.
	ErrDepositSettled = errors.New("kickoff deposit already paid")
	// ErrNoServicesSelected rejects a checkout before any services are picked.
	ErrNoServicesSelected = errors.New("no services selected yet")
)

// CreateDepositCheckout feeds the workflow snapshot into billing: one
// kickoff-deposit payment request, checkout link included, for the amount
// captured at selection time.
func (s *Service) CreateDepositCheckout(ctx context.Context, id uuid.UUID) (*billing.PaymentRequest, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DepositPaidAt != nil {
		return nil, ErrDepositSettled
	}
	if p.DepositNowCents <= 0 {
		return nil, ErrNoServicesSelected
	}

	label := catalog.DescribeSelection(s.catalog, p.Selection).Label
	record, err := s.billing.CreateDepositRequest(ctx, p.ClientID, p.ID, p.DepositNowCents, "Kickoff deposit: "+label)
	if err != nil {
		return nil, err
	}
	s.logger.Info("deposit checkout created",
		zap.String("project_id", p.ID.String()),
		zap.String("request_id", record.ID.String()),
		zap.Int64("amount_cents", record.AmountCents),
		zap.Bool("sample", record.Sample))
	return record, nil
}

func (s *Service) MarkDepositPaid(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.transition(ctx, id, (*Project).MarkDepositPaid)
}

func (s *Service) AdvanceToLaunchApproval(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.transition(ctx, id, (*Project).AdvanceToLaunchApproval)
}

func (s *Service) ApproveLaunch(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.transition(ctx, id, (*Project).ApproveLaunch)
}

func (s *Service) MarkFinalInvoicePaid(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.transition(ctx, id, (*Project).MarkFinalInvoicePaid)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, op func(*Project)) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	op(p)
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateStatus applies one explicit delivery-status change for an actor,
// consulting the authority table. Staff updates always win; client updates
// bounce off protected statuses with a StatusProtectedError.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, actor Actor, target Status, note string) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.SetStatus(actor, target, note); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("delivery status updated",
		zap.String("project_id", id.String()),
		zap.String("actor", string(actor)),
		zap.String("status", string(target)))
	return p, nil
}
