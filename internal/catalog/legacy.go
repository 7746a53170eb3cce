package catalog

// Older intake records identify their bundle with a single plan string
// instead of per-service flags. The table below is the only place those
// strings are interpreted; new code depends on SelectionState exclusively.

// legacyPlanVersion is bumped whenever an entry is added or changes meaning.
const legacyPlanVersion = 2

var legacyPlans = map[string][]ServiceKey{
	"full-funnel":  {KeyWebsite, KeyAds, KeyVoice},
	"website-only": {KeyWebsite},
	"site-and-ads": {KeyWebsite, KeyAds},
	"voice-only":   {KeyVoice},
	// v2: "growth" replaced the retired "starter-plus" bundle
	"growth": {KeyWebsite, KeyAds},
}

// LegacyPlanVersion reports the current translation-table version, persisted
// alongside migrated records so stale translations can be detected.
func LegacyPlanVersion() int {
	return legacyPlanVersion
}

// SelectionForLegacyPlan translates a legacy plan string into a normalized
// selection. Unknown plans return ok=false and an empty selection.
func SelectionForLegacyPlan(c *Catalog, plan string) (SelectionState, bool) {
	keys, ok := legacyPlans[plan]
	if !ok {
		return Normalize(c, nil), false
	}
	sel := emptySelection(c)
	for _, key := range keys {
		if _, known := c.Get(key); known {
			sel[key] = true
		}
	}
	return sel, true
}
