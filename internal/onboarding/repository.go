package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an operation targets a project identity that
// does not exist. Callers surface it; it is never silently swallowed.
var ErrNotFound = errors.New("onboarding project not found")

// Repository persists projects and their outbox events.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]Project, error)
	// Save writes the project row and its staged events in one transaction,
	// then clears the staged events. Lost updates between events and state
	// are what the single transaction exists to prevent.
	Save(ctx context.Context, p *Project) error

	ListPendingEvents(ctx context.Context, limit int) ([]OutboxEvent, error)
	AckEvents(ctx context.Context, ids []uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var p Project
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]Project, error) {
	var projects []Project
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *gormRepository) Save(ctx context.Context, p *Project) error {
	events := p.PendingEvents()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		for _, tag := range events {
			ev := OutboxEvent{ProjectID: p.ID, Tag: tag}
			if err := tx.Create(&ev).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.ClearPendingEvents()
	return nil
}

func (r *gormRepository) ListPendingEvents(ctx context.Context, limit int) ([]OutboxEvent, error) {
	var events []OutboxEvent
	err := r.db.WithContext(ctx).
		Where("acked_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *gormRepository) AckEvents(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id IN ?", ids).
		Update("acked_at", now).Error
}
