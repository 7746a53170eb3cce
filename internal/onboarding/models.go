package onboarding

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/quickskil/launchpad-portal/internal/catalog"
)

// Step is the workflow step pointer. Nine steps, fixed order, one-directional.
type Step string

const (
	StepWelcome             Step = "welcome"
	StepSelectServices      Step = "select-services"
	StepBusinessInfo        Step = "business-info"
	StepDesignSpecs         Step = "design-specs"
	StepMediaUpload         Step = "media-upload"
	StepReviewAndPayDeposit Step = "review-and-pay-deposit"
	StepPostpaySuccess      Step = "postpay-success"
	StepLaunchApproval      Step = "launch-approval"
	StepFinalInvoice        Step = "final-invoice"
)

var stepOrder = []Step{
	StepWelcome,
	StepSelectServices,
	StepBusinessInfo,
	StepDesignSpecs,
	StepMediaUpload,
	StepReviewAndPayDeposit,
	StepPostpaySuccess,
	StepLaunchApproval,
	StepFinalInvoice,
}

// TotalSteps is the fixed length of the onboarding pipeline.
const TotalSteps = 9

// Index returns the 1-based position of the step, or 0 for an unknown step.
func (s Step) Index() int {
	for i, step := range stepOrder {
		if step == s {
			return i + 1
		}
	}
	return 0
}

// Status is the delivery-readiness track. It evolves independently of the
// step pointer and is the field the protected-status rule guards.
type Status string

const (
	StatusNotStarted  Status = "not-started"
	StatusSubmitted   Status = "submitted"
	StatusInProgress  Status = "in-progress"
	StatusLaunchReady Status = "launch-ready"
)

// Event tags appended to the project outbox for downstream automation.
const (
	EventAssetsUploaded = "assets.uploaded"
	EventDepositPaid    = "deposit.paid"
	EventLaunchApproved = "launch.approved"
	EventFinalPaid      = "final.paid"
)

// BusinessInfo is the client's intake form.
type BusinessInfo struct {
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	Website      string `json:"website"`
	About        string `json:"about"`
}

// DesignSpecs captures look-and-feel choices for the build.
type DesignSpecs struct {
	StylePreference string   `json:"style_preference"`
	PrimaryColor    string   `json:"primary_color"`
	SecondaryColor  string   `json:"secondary_color"`
	FontPreference  string   `json:"font_preference"`
	ReferenceSites  []string `json:"reference_sites"`
	Notes           string   `json:"notes"`
}

// UploadAsset is a reference to a client-uploaded media file.
type UploadAsset struct {
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// VoiceAgentConfig exists only while the voice service is selected.
type VoiceAgentConfig struct {
	HoursStart            string   `json:"hours_start"`
	HoursEnd              string   `json:"hours_end"`
	TransferKeywords      []string `json:"transfer_keywords"`
	MinTransferConfidence float64  `json:"min_transfer_confidence"`
}

// DefaultVoiceAgentConfig is the lazily-built starting configuration used
// the moment a selection first includes the voice service.
func DefaultVoiceAgentConfig() *VoiceAgentConfig {
	return &VoiceAgentConfig{
		HoursStart:            "08:00",
		HoursEnd:              "18:00",
		TransferKeywords:      []string{"emergency", "quote", "estimate", "manager"},
		MinTransferConfidence: 0.75,
	}
}

// Project is the onboarding aggregate for one client engagement. It is never
// hard-deleted here; archival is the host application's concern.
type Project struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID  uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Step      Step      `gorm:"not null;default:'welcome'" json:"step"`
	StepIndex int       `gorm:"not null;default:1" json:"step_index"`
	Status    Status    `gorm:"not null;default:'not-started'" json:"status"`

	Selection    catalog.SelectionState `gorm:"serializer:json" json:"selection"`
	BusinessInfo *BusinessInfo          `gorm:"serializer:json" json:"business_info,omitempty"`
	DesignSpecs  *DesignSpecs           `gorm:"serializer:json" json:"design_specs,omitempty"`
	Uploads      []UploadAsset          `gorm:"serializer:json" json:"uploads"`
	VoiceAgent   *VoiceAgentConfig      `gorm:"serializer:json" json:"voice_agent,omitempty"`

	// Financial snapshot, recomputed from the catalog on every selection change.
	DepositNowCents   int64 `gorm:"not null;default:0" json:"deposit_now_cents"`
	BalanceLaterCents int64 `gorm:"not null;default:0" json:"balance_later_cents"`

	// Payment milestones, set once. Their presence is what makes the
	// paid/approved transitions idempotent across retries.
	DepositPaidAt    *time.Time `json:"deposit_paid_at,omitempty"`
	LaunchApprovedAt *time.Time `json:"launch_approved_at,omitempty"`
	FinalPaidAt      *time.Time `json:"final_paid_at,omitempty"`

	StatusNote string         `json:"status_note"`
	Metadata   datatypes.JSON `gorm:"default:'{}'" json:"metadata"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Events staged by workflow transitions, flushed to the outbox on save.
	pendingEvents []string `gorm:"-"`
}

// PendingEvents returns event tags staged since the last save.
func (p *Project) PendingEvents() []string {
	return p.pendingEvents
}

func (p *Project) enqueue(tag string) {
	p.pendingEvents = append(p.pendingEvents, tag)
}

// ClearPendingEvents is called by the repository after the staged tags have
// been written to the outbox in the same transaction as the project row.
func (p *Project) ClearPendingEvents() {
	p.pendingEvents = nil
}

// OutboxEvent is one appended automation event. The core only appends;
// the drain worker acknowledges.
type OutboxEvent struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	Tag       string     `gorm:"not null" json:"tag"`
	CreatedAt time.Time  `json:"created_at"`
	AckedAt   *time.Time `gorm:"index" json:"acked_at,omitempty"`
}
