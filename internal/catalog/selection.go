package catalog

import (
	"fmt"
	"math"
	"strings"
)

// SelectionState is a boolean flag per known service key. A normalized
// selection is defined for every catalog key and carries no unknown keys.
type SelectionState map[ServiceKey]bool

// UnknownServiceError reports a selection key outside the catalog.
type UnknownServiceError struct {
	Key string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service %q", e.Key)
}

// SelectionFromKeys validates keys against the catalog and builds a
// normalized selection. The first unknown key fails the whole call.
func SelectionFromKeys(c *Catalog, keys []string) (SelectionState, error) {
	sel := emptySelection(c)
	for _, k := range keys {
		key := ServiceKey(k)
		if _, ok := c.Get(key); !ok {
			return nil, &UnknownServiceError{Key: k}
		}
		sel[key] = true
	}
	return sel, nil
}

// Normalize returns a copy of sel defined for every catalog key, with
// unknown keys dropped. Garbage in, well-formed selection out.
func Normalize(c *Catalog, sel SelectionState) SelectionState {
	out := emptySelection(c)
	for _, key := range c.Keys() {
		if sel[key] {
			out[key] = true
		}
	}
	return out
}

func emptySelection(c *Catalog) SelectionState {
	sel := make(SelectionState, len(c.services))
	for _, key := range c.Keys() {
		sel[key] = false
	}
	return sel
}

// Summary is the derived pricing and marketing view of a selection.
// It is computed on demand, never stored.
type Summary struct {
	Label              string   `json:"label"`
	Tagline            string   `json:"tagline"`
	Description        string   `json:"description"`
	Proof              string   `json:"proof"`
	Bullets            []string `json:"bullets"`
	DepositCents       int64    `json:"deposit_cents"`
	DueAtApprovalCents int64    `json:"due_at_approval_cents"`
	DiscountCents      int64    `json:"discount_cents"`
	TotalLaunchCents   int64    `json:"total_launch_cents"`
	OngoingNotes       []string `json:"ongoing_notes"`
}

const bulletSeparator = " • "

// DescribeSelection prices and labels a selection. Pure and deterministic:
// the deposit is the flat kickoff fee for any non-empty selection, the
// bundle discount applies only when every catalog service is selected, and
// TotalLaunchCents is always deposit plus discounted due-at-approval.
func DescribeSelection(c *Catalog, sel SelectionState) Summary {
	sel = Normalize(c, sel)

	var selected []ServiceDefinition
	for _, d := range c.services {
		if sel[d.Key] {
			selected = append(selected, d)
		}
	}

	if len(selected) == 0 {
		return Summary{
			Label:        "Pick Your Services",
			Tagline:      "Choose at least one service to see launch pricing",
			Description:  "Select website, ads, or AI voice to build your launch package.",
			Bullets:      []string{},
			OngoingNotes: []string{},
		}
	}

	var due int64
	for _, d := range selected {
		due += d.DueAtApprovalCents
	}

	var discount int64
	fullBundle := len(selected) == len(c.services)
	if fullBundle {
		discount = int64(math.Round(float64(due) * c.bundleDiscountPct))
	}

	deposit := c.kickoffFeeCents
	summary := Summary{
		Label:              c.bundleLabel,
		Tagline:            mergeLines(selected, func(d ServiceDefinition) string { return d.Tagline }),
		Description:        mergeLines(selected, func(d ServiceDefinition) string { return d.Description }),
		Proof:              mergeLines(selected, func(d ServiceDefinition) string { return d.Proof }),
		Bullets:            mergeBullets(selected),
		DepositCents:       deposit,
		DueAtApprovalCents: due - discount,
		DiscountCents:      discount,
		TotalLaunchCents:   deposit + due - discount,
		OngoingNotes:       mergeNotes(selected),
	}
	if !fullBundle {
		names := make([]string, 0, len(selected))
		for _, d := range selected {
			names = append(names, d.Name)
		}
		summary.Label = strings.Join(names, " + ")
	}
	return summary
}

// mergeLines joins one single-line copy field across services, de-duplicated.
func mergeLines(selected []ServiceDefinition, field func(ServiceDefinition) string) string {
	var parts []string
	seen := make(map[string]bool)
	for _, d := range selected {
		line := field(d)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		parts = append(parts, line)
	}
	return strings.Join(parts, bulletSeparator)
}

func mergeBullets(selected []ServiceDefinition) []string {
	bullets := []string{}
	seen := make(map[string]bool)
	for _, d := range selected {
		for _, b := range d.Bullets {
			if b == "" || seen[b] {
				continue
			}
			seen[b] = true
			bullets = append(bullets, b)
		}
	}
	return bullets
}

func mergeNotes(selected []ServiceDefinition) []string {
	notes := []string{}
	seen := make(map[string]bool)
	for _, d := range selected {
		if d.OngoingNote == "" || seen[d.OngoingNote] {
			continue
		}
		seen[d.OngoingNote] = true
		notes = append(notes, d.OngoingNote)
	}
	return notes
}
