package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a payment request identity does not exist.
var ErrNotFound = errors.New("payment request not found")

type Repository interface {
	Create(ctx context.Context, req *PaymentRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*PaymentRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]PaymentRequest, error)
	Update(ctx context.Context, req *PaymentRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, req *PaymentRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*PaymentRequest, error) {
	var req PaymentRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]PaymentRequest, error) {
	var requests []PaymentRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *gormRepository) Update(ctx context.Context, req *PaymentRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&PaymentRequest{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
