package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RequestStatus is the local lifecycle of a payment request. It tracks what
// staff asked for, not what the processor has confirmed; processor truth
// arrives separately as payments.PaymentRecord.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusSent     RequestStatus = "sent"
	RequestStatusPaid     RequestStatus = "paid"
	RequestStatusCanceled RequestStatus = "canceled"
)

// PaymentRequest is a billing record created by staff or by the client
// deposit flow, optionally wrapping a processor checkout link.
type PaymentRequest struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectID   *uuid.UUID    `gorm:"type:uuid;index" json:"project_id,omitempty"`
	AmountCents int64         `gorm:"not null" json:"amount_cents"`
	Currency    string        `gorm:"not null;default:'USD'" json:"currency"`
	Description string        `json:"description"`
	Status      RequestStatus `gorm:"not null;default:'pending'" json:"status"`

	CheckoutURL       *string `json:"checkout_url,omitempty"`
	CheckoutSessionID *string `json:"checkout_session_id,omitempty"`
	// Sample marks a record whose checkout link came from the demo
	// processor rather than a configured one.
	Sample bool `gorm:"not null;default:false" json:"sample,omitempty"`

	LastEmailSubject *string    `json:"last_email_subject,omitempty"`
	LastEmailMessage *string    `json:"last_email_message,omitempty"`
	LastEmailedAt    *time.Time `json:"last_emailed_at,omitempty"`

	Metadata datatypes.JSON `gorm:"default:'{}'" json:"metadata"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
