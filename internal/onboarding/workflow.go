package onboarding

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quickskil/launchpad-portal/internal/catalog"
)

// The workflow is a nine-step linear pipeline. Transitions happen through
// the named operations below, never by arbitrary jumps, and the step pointer
// only moves forward. Ordering is permissive in the early steps: submitting
// a form "out of order" is fine, but an unknown service key fails the call
// without mutating the project.

// NewProject starts a project at the welcome step for one client.
func NewProject(clientID uuid.UUID, cat *catalog.Catalog) *Project {
	return &Project{
		ClientID:  clientID,
		Step:      StepWelcome,
		StepIndex: StepWelcome.Index(),
		Status:    StatusNotStarted,
		Selection: catalog.Normalize(cat, nil),
		Uploads:   []UploadAsset{},
	}
}

func (p *Project) advanceTo(step Step) {
	if step.Index() > p.StepIndex {
		p.Step = step
		p.StepIndex = step.Index()
	}
}

// SelectServices validates keys, replaces (never accumulates) the selection,
// recomputes the financial snapshot from the catalog, and manages the voice
// agent config before advancing to business-info.
func (p *Project) SelectServices(cat *catalog.Catalog, keys []string) error {
	sel, err := catalog.SelectionFromKeys(cat, keys)
	if err != nil {
		return err
	}
	p.Selection = sel

	summary := catalog.DescribeSelection(cat, sel)
	p.DepositNowCents = summary.DepositCents
	p.BalanceLaterCents = summary.DueAtApprovalCents

	if sel[catalog.KeyVoice] {
		if p.VoiceAgent == nil {
			p.VoiceAgent = DefaultVoiceAgentConfig()
		}
	} else {
		p.VoiceAgent = nil
	}

	p.advanceTo(StepBusinessInfo)
	return nil
}

// SetBusinessInfo stores the intake form and advances to design-specs.
func (p *Project) SetBusinessInfo(info BusinessInfo) {
	p.BusinessInfo = &info
	p.advanceTo(StepDesignSpecs)
}

// SetDesignSpecs stores the design form and advances to media-upload.
func (p *Project) SetDesignSpecs(specs DesignSpecs) {
	p.DesignSpecs = &specs
	p.advanceTo(StepMediaUpload)
}

// RecordUploads appends asset references, stages assets.uploaded when any
// were added, and advances to review-and-pay-deposit.
func (p *Project) RecordUploads(assets []UploadAsset) {
	now := time.Now()
	for i := range assets {
		if assets[i].UploadedAt.IsZero() {
			assets[i].UploadedAt = now
		}
	}
	if len(assets) > 0 {
		p.Uploads = append(p.Uploads, assets...)
		p.enqueue(EventAssetsUploaded)
	}
	p.advanceTo(StepReviewAndPayDeposit)
}

// MarkDepositPaid records the kickoff payment. Idempotent: once the project
// has moved past review-and-pay-deposit the call is a no-op, so a retried
// payment confirmation neither regresses state nor double-enqueues.
func (p *Project) MarkDepositPaid() {
	if p.DepositPaidAt != nil || p.Step.Index() >= StepPostpaySuccess.Index() {
		return
	}
	now := time.Now()
	p.DepositPaidAt = &now
	p.enqueue(EventDepositPaid)
	p.advanceTo(StepPostpaySuccess)
}

// AdvanceToLaunchApproval is the manual trigger fired once build work is
// done. The build itself happens outside this machine's authority.
func (p *Project) AdvanceToLaunchApproval() {
	p.advanceTo(StepLaunchApproval)
}

// ApproveLaunch records client sign-off and moves to the final invoice.
func (p *Project) ApproveLaunch() {
	if p.LaunchApprovedAt != nil || p.Step.Index() >= StepFinalInvoice.Index() {
		return
	}
	now := time.Now()
	p.LaunchApprovedAt = &now
	p.enqueue(EventLaunchApproved)
	p.advanceTo(StepFinalInvoice)
}

// MarkFinalInvoicePaid completes the pipeline. Terminal: no transition out.
func (p *Project) MarkFinalInvoicePaid() {
	if p.FinalPaidAt != nil {
		return
	}
	now := time.Now()
	p.FinalPaidAt = &now
	p.enqueue(EventFinalPaid)
}

// Step prompt templates. [depositNow] and [balanceLater] are substituted
// with computed dollar amounts by RenderPrompt; the "Step N of 9" marker is
// the step pointer the rendering layer shows the client.
var stepPrompts = map[Step]string{
	StepWelcome:             "Step 1 of 9 — Welcome! Let's launch your business. We'll pick your services, gather your details, and get you live.",
	StepSelectServices:      "Step 2 of 9 — Pick your services. Your kickoff deposit today is [depositNow], with [balanceLater] due only after you approve the finished build.",
	StepBusinessInfo:        "Step 3 of 9 — Tell us about your business so we can write copy that sounds like you.",
	StepDesignSpecs:         "Step 4 of 9 — Choose your look: colors, style, and sites you love.",
	StepMediaUpload:         "Step 5 of 9 — Upload your logo, photos, and anything else we should feature.",
	StepReviewAndPayDeposit: "Step 6 of 9 — Review your package. Pay the [depositNow] kickoff deposit to start the build; the remaining [balanceLater] is due at approval.",
	StepPostpaySuccess:      "Step 7 of 9 — Deposit received! Our team is on it. We'll ping you the moment your build is ready for review.",
	StepLaunchApproval:      "Step 8 of 9 — Your build is ready. Approve the launch when it looks right, and we'll send the final invoice for [balanceLater].",
	StepFinalInvoice:        "Step 9 of 9 — Final invoice: [balanceLater]. Once paid, everything goes live and you're launched.",
}

// RenderPrompt returns the current step's display copy with the financial
// snapshot substituted as dollars.
func (p *Project) RenderPrompt() string {
	tmpl, ok := stepPrompts[p.Step]
	if !ok {
		return ""
	}
	out := strings.ReplaceAll(tmpl, "[depositNow]", dollars(p.DepositNowCents))
	return strings.ReplaceAll(out, "[balanceLater]", dollars(p.BalanceLaterCents))
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
