package catalog

// ServiceKey identifies one sellable service in a launch bundle.
type ServiceKey string

const (
	KeyWebsite ServiceKey = "website"
	KeyAds     ServiceKey = "ads"
	KeyVoice   ServiceKey = "voice"
)

// ServiceDefinition is a static catalog entry. Definitions are immutable
// after the catalog is built; all money fields are minor units (cents).
type ServiceDefinition struct {
	Key                ServiceKey `json:"key"`
	Name               string     `json:"name"`
	Tagline            string     `json:"tagline"`
	Description        string     `json:"description"`
	Proof              string     `json:"proof"`
	Bullets            []string   `json:"bullets"`
	TotalCents         int64      `json:"total_cents"`
	DueAtApprovalCents int64      `json:"due_at_approval_cents"`
	OngoingNote        string     `json:"ongoing_note"`
}

// Catalog holds the service definitions plus the bundle pricing rules.
// It is injected into everything that prices a selection; it is never a
// mutable package global, so tests can substitute their own.
type Catalog struct {
	services          []ServiceDefinition
	byKey             map[ServiceKey]ServiceDefinition
	kickoffFeeCents   int64
	bundleDiscountPct float64
	bundleLabel       string
}

// New builds a catalog. kickoffFeeCents is the flat deposit charged once
// for any non-empty selection; bundleDiscountPct is the fraction taken off
// the due-at-approval sum when every service is selected.
func New(defs []ServiceDefinition, kickoffFeeCents int64, bundleDiscountPct float64, bundleLabel string) *Catalog {
	byKey := make(map[ServiceKey]ServiceDefinition, len(defs))
	for _, d := range defs {
		byKey[d.Key] = d
	}
	return &Catalog{
		services:          defs,
		byKey:             byKey,
		kickoffFeeCents:   kickoffFeeCents,
		bundleDiscountPct: bundleDiscountPct,
		bundleLabel:       bundleLabel,
	}
}

// Default returns the production launch-package catalog.
func Default() *Catalog {
	return New([]ServiceDefinition{
		{
			Key:         KeyWebsite,
			Name:        "Website",
			Tagline:     "A conversion-first site that books jobs while you sleep",
			Description: "Custom-designed launch site with booking, reviews, and lead capture wired in from day one.",
			Proof:       "Sites we launch average a 2x lift in booked calls within 60 days",
			Bullets: []string{
				"Custom design and copy",
				"Booking and lead-capture forms",
				"Review and testimonial sections",
			},
			TotalCents:         49900,
			DueAtApprovalCents: 40000,
			OngoingNote:        "Hosting and edits from $49/mo after launch",
		},
		{
			Key:         KeyAds,
			Name:        "Ads",
			Tagline:     "Search and social campaigns that pay for themselves",
			Description: "Done-for-you ad campaigns on Google and Meta, tuned weekly against real lead cost.",
			Proof:       "Managed accounts average $4 returned per $1 of ad spend",
			Bullets: []string{
				"Campaign build on Google and Meta",
				"Landing pages matched to each ad group",
				"Weekly tuning against cost per lead",
			},
			TotalCents:         110000,
			DueAtApprovalCents: 100100,
			OngoingNote:        "Ad management from $299/mo, spend billed direct",
		},
		{
			Key:         KeyVoice,
			Name:        "AI Voice",
			Tagline:     "An AI receptionist that answers every call, 24/7",
			Description: "A trained voice agent that answers, qualifies, books, and warm-transfers the calls that matter.",
			Proof:       "Clients recover an average of 31 missed calls in the first month",
			Bullets: []string{
				"Answers every call around the clock",
				"Books jobs straight into your calendar",
				"Warm-transfers hot leads to your phone",
			},
			TotalCents:         149900,
			DueAtApprovalCents: 140000,
			OngoingNote:        "Voice minutes from $99/mo after launch",
		},
	}, 9900, 0.10, "Full Funnel")
}

// Services returns the catalog entries in display order.
func (c *Catalog) Services() []ServiceDefinition {
	return c.services
}

// Keys returns every known service key in display order.
func (c *Catalog) Keys() []ServiceKey {
	keys := make([]ServiceKey, 0, len(c.services))
	for _, d := range c.services {
		keys = append(keys, d.Key)
	}
	return keys
}

// Get looks up a single definition by key.
func (c *Catalog) Get(key ServiceKey) (ServiceDefinition, bool) {
	d, ok := c.byKey[key]
	return d, ok
}

// KickoffFeeCents returns the flat deposit charged for any non-empty selection.
func (c *Catalog) KickoffFeeCents() int64 {
	return c.kickoffFeeCents
}
