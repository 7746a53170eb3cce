package onboarding

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickskil/launchpad-portal/internal/catalog"
)

func TestCanSetStatusAuthorityTable(t *testing.T) {
	cases := []struct {
		name    string
		actor   Actor
		current Status
		target  Status
		allowed bool
	}{
		{"staff may set any status", ActorStaff, StatusSubmitted, StatusInProgress, true},
		{"staff may downgrade a protected status", ActorStaff, StatusLaunchReady, StatusSubmitted, true},
		{"staff may re-open from launch-ready", ActorStaff, StatusLaunchReady, StatusInProgress, true},
		{"client may submit from not-started", ActorClient, StatusNotStarted, StatusSubmitted, true},
		{"client may re-submit from submitted", ActorClient, StatusSubmitted, StatusSubmitted, true},
		{"client may not claim in-progress", ActorClient, StatusSubmitted, StatusInProgress, false},
		{"client may not claim launch-ready", ActorClient, StatusSubmitted, StatusLaunchReady, false},
		{"client may not downgrade in-progress", ActorClient, StatusInProgress, StatusSubmitted, false},
		{"client may not downgrade launch-ready", ActorClient, StatusLaunchReady, StatusSubmitted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanSetStatus(tc.actor, tc.current, tc.target))
		})
	}
}

func TestSetStatusBlockedClientWriteReturnsProtectedError(t *testing.T) {
	p := NewProject(uuid.New(), catalog.Default())
	require.NoError(t, p.SetStatus(ActorStaff, StatusInProgress, "build started"))

	err := p.SetStatus(ActorClient, StatusSubmitted, "")

	var protected *StatusProtectedError
	require.ErrorAs(t, err, &protected)
	assert.Equal(t, StatusInProgress, protected.Current)
	assert.Equal(t, StatusInProgress, p.Status, "blocked write must not mutate")
	assert.Equal(t, "build started", p.StatusNote)
}

func TestSetStatusClientWriteNeverRecordsNote(t *testing.T) {
	p := NewProject(uuid.New(), catalog.Default())

	require.NoError(t, p.SetStatus(ActorClient, StatusSubmitted, "sneaky note"))

	assert.Equal(t, StatusSubmitted, p.Status)
	assert.Empty(t, p.StatusNote)
}

func TestTouchStatusOnClientSave(t *testing.T) {
	cases := []struct {
		current Status
		want    Status
	}{
		{"", StatusSubmitted},
		{StatusNotStarted, StatusSubmitted},
		{StatusSubmitted, StatusSubmitted},
		{StatusInProgress, StatusInProgress},
		{StatusLaunchReady, StatusLaunchReady},
	}

	for _, tc := range cases {
		p := NewProject(uuid.New(), catalog.Default())
		p.Status = tc.current
		p.TouchStatusOnClientSave()
		assert.Equal(t, tc.want, p.Status, "from %q", tc.current)
	}
}

func TestClientSaveNeverRegressesLaunchReady(t *testing.T) {
	cat := catalog.Default()
	p := NewProject(uuid.New(), cat)
	require.NoError(t, p.SelectServices(cat, []string{"website"}))
	p.TouchStatusOnClientSave()
	require.NoError(t, p.SetStatus(ActorStaff, StatusLaunchReady, "ready for review"))

	// client keeps editing forms after staff flips the flag
	p.SetBusinessInfo(BusinessInfo{BusinessName: "Late Edit LLC"})
	p.TouchStatusOnClientSave()

	assert.Equal(t, StatusLaunchReady, p.Status)
}
