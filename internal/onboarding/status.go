package onboarding

import "fmt"

// Actor identifies who is asking for a delivery-status change. The project
// carries two tracks — the workflow step and the delivery status — and the
// authority table below is the single place that says which actor may move
// the status track from which state.
type Actor string

const (
	ActorClient Actor = "client"
	ActorStaff  Actor = "staff"
)

// Protected statuses: staff has claimed delivery, so a routine client save
// must never downgrade them. Only an explicit staff update may.
var protectedStatuses = map[Status]bool{
	StatusInProgress:  true,
	StatusLaunchReady: true,
}

// statusAuthority lists, per actor, the statuses that actor may write from a
// given current status. Staff always wins: staff action is the authority
// that defines the protected states in the first place.
var statusAuthority = map[Actor]func(current, target Status) bool{
	ActorStaff: func(current, target Status) bool {
		return true
	},
	ActorClient: func(current, target Status) bool {
		if target != StatusSubmitted {
			return false
		}
		return !protectedStatuses[current]
	},
}

// StatusProtectedError reports a client write blocked by a protected status.
type StatusProtectedError struct {
	Current Status
	Target  Status
}

func (e *StatusProtectedError) Error() string {
	return fmt.Sprintf("status %q is staff-managed and cannot be changed to %q by a client action", e.Current, e.Target)
}

// CanSetStatus consults the authority table.
func CanSetStatus(actor Actor, current, target Status) bool {
	rule, ok := statusAuthority[actor]
	return ok && rule(current, target)
}

// SetStatus applies one explicit status change for an actor. Staff updates
// may carry an internal note; client updates never do.
func (p *Project) SetStatus(actor Actor, target Status, note string) error {
	if !CanSetStatus(actor, p.Status, target) {
		return &StatusProtectedError{Current: p.Status, Target: target}
	}
	p.Status = target
	if actor == ActorStaff {
		p.StatusNote = note
	}
	return nil
}

// TouchStatusOnClientSave is the routine-save rule: a client's first
// submission moves an untracked project to submitted; once staff has set a
// protected status, a plain save leaves it alone instead of failing.
func (p *Project) TouchStatusOnClientSave() {
	if p.Status == "" || p.Status == StatusNotStarted {
		p.Status = StatusSubmitted
		return
	}
	if protectedStatuses[p.Status] {
		return
	}
	p.Status = StatusSubmitted
}
