package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeSelectionWebsiteOnly(t *testing.T) {
	c := Default()

	sum := DescribeSelection(c, SelectionState{KeyWebsite: true})

	assert.Equal(t, int64(9900), sum.DepositCents)
	assert.Equal(t, int64(40000), sum.DueAtApprovalCents)
	assert.Equal(t, int64(0), sum.DiscountCents)
	assert.Equal(t, int64(49900), sum.TotalLaunchCents)
	assert.Equal(t, "Website", sum.Label)
}

func TestDescribeSelectionFullBundle(t *testing.T) {
	c := Default()

	sum := DescribeSelection(c, SelectionState{KeyWebsite: true, KeyAds: true, KeyVoice: true})

	// 10% of 40000+100100+140000, rounded to the nearest cent
	assert.Equal(t, int64(28010), sum.DiscountCents)
	assert.Equal(t, int64(252090), sum.DueAtApprovalCents)
	assert.Equal(t, int64(9900), sum.DepositCents)
	assert.Equal(t, int64(261990), sum.TotalLaunchCents)
	assert.Equal(t, "Full Funnel", sum.Label)
}

func TestDepositIsFlatNotPerService(t *testing.T) {
	c := Default()

	one := DescribeSelection(c, SelectionState{KeyAds: true})
	two := DescribeSelection(c, SelectionState{KeyAds: true, KeyVoice: true})

	assert.Equal(t, one.DepositCents, two.DepositCents)
	assert.Equal(t, c.KickoffFeeCents(), two.DepositCents)
}

func TestDiscountOnlyForFullBundle(t *testing.T) {
	c := Default()

	subsets := []SelectionState{
		{KeyWebsite: true},
		{KeyAds: true},
		{KeyVoice: true},
		{KeyWebsite: true, KeyAds: true},
		{KeyWebsite: true, KeyVoice: true},
		{KeyAds: true, KeyVoice: true},
	}
	for _, sel := range subsets {
		sum := DescribeSelection(c, sel)
		assert.Zero(t, sum.DiscountCents, "subset %v must not get the bundle discount", sel)
	}

	full := DescribeSelection(c, SelectionState{KeyWebsite: true, KeyAds: true, KeyVoice: true})
	assert.Positive(t, full.DiscountCents)
}

func TestTotalIsDepositPlusDiscountedDue(t *testing.T) {
	c := Default()

	selections := []SelectionState{
		{},
		{KeyWebsite: true},
		{KeyWebsite: true, KeyAds: true},
		{KeyWebsite: true, KeyAds: true, KeyVoice: true},
	}
	for _, sel := range selections {
		sum := DescribeSelection(c, sel)
		assert.Equal(t, sum.DepositCents+sum.DueAtApprovalCents, sum.TotalLaunchCents)
		assert.GreaterOrEqual(t, sum.TotalLaunchCents, sum.DepositCents)
	}
}

func TestEmptySelectionIsWellFormed(t *testing.T) {
	c := Default()

	sum := DescribeSelection(c, SelectionState{})

	assert.Zero(t, sum.DepositCents)
	assert.Zero(t, sum.DueAtApprovalCents)
	assert.Zero(t, sum.TotalLaunchCents)
	assert.Equal(t, "Pick Your Services", sum.Label)
	assert.NotEmpty(t, sum.Tagline)
}

func TestDescribeSelectionMergesCopy(t *testing.T) {
	c := Default()

	sum := DescribeSelection(c, SelectionState{KeyWebsite: true, KeyAds: true})

	assert.Equal(t, "Website + Ads", sum.Label)
	assert.True(t, strings.Contains(sum.Tagline, " • "), "two services must join single-line copy with a bullet")
	assert.Len(t, sum.Bullets, 6)
	assert.Len(t, sum.OngoingNotes, 2)
}

func TestDescribeSelectionIgnoresUnknownKeys(t *testing.T) {
	c := Default()

	withGarbage := DescribeSelection(c, SelectionState{KeyWebsite: true, ServiceKey("hovercraft"): true})
	clean := DescribeSelection(c, SelectionState{KeyWebsite: true})

	assert.Equal(t, clean, withGarbage)
}

func TestSelectionFromKeys(t *testing.T) {
	c := Default()

	sel, err := SelectionFromKeys(c, []string{"website", "voice"})
	require.NoError(t, err)
	assert.True(t, sel[KeyWebsite])
	assert.False(t, sel[KeyAds])
	assert.True(t, sel[KeyVoice])

	_, err = SelectionFromKeys(c, []string{"website", "podcast"})
	require.Error(t, err)
	var unknown *UnknownServiceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "podcast", unknown.Key)
}

func TestNormalizeDefinesEveryKey(t *testing.T) {
	c := Default()

	sel := Normalize(c, SelectionState{KeyAds: true})

	for _, key := range c.Keys() {
		_, defined := sel[key]
		assert.True(t, defined, "key %s must be defined after normalize", key)
	}
	assert.Len(t, sel, len(c.Keys()))
}

func TestSelectionForLegacyPlan(t *testing.T) {
	c := Default()

	sel, ok := SelectionForLegacyPlan(c, "full-funnel")
	require.True(t, ok)
	for _, key := range c.Keys() {
		assert.True(t, sel[key])
	}

	sel, ok = SelectionForLegacyPlan(c, "growth")
	require.True(t, ok)
	assert.True(t, sel[KeyWebsite])
	assert.True(t, sel[KeyAds])
	assert.False(t, sel[KeyVoice])

	_, ok = SelectionForLegacyPlan(c, "starter-plus")
	assert.False(t, ok)
}

func TestCatalogIsInjectable(t *testing.T) {
	tiny := New([]ServiceDefinition{
		{Key: "seo", Name: "SEO", DueAtApprovalCents: 5000},
	}, 1000, 0.5, "Everything")

	sum := DescribeSelection(tiny, SelectionState{"seo": true})

	// single service is the whole catalog here, so the discount applies
	assert.Equal(t, int64(2500), sum.DiscountCents)
	assert.Equal(t, int64(1000+2500), sum.TotalLaunchCents)
	assert.Equal(t, "Everything", sum.Label)
}
