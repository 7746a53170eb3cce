package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDrainOnceAcksDeliveredEvents(t *testing.T) {
	repo := new(mockRepository)
	events := []OutboxEvent{
		{ID: uuid.New(), ProjectID: uuid.New(), Tag: EventDepositPaid},
		{ID: uuid.New(), ProjectID: uuid.New(), Tag: EventLaunchApproved},
	}
	repo.On("ListPendingEvents", mock.Anything, 100).Return(events, nil)
	repo.On("AckEvents", mock.Anything, []uuid.UUID{events[0].ID, events[1].ID}).Return(nil)

	var seen []string
	drainer := NewDrainer(repo, zap.NewNop(), func(ctx context.Context, ev OutboxEvent) error {
		seen = append(seen, ev.Tag)
		return nil
	})

	n, err := drainer.DrainOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{EventDepositPaid, EventLaunchApproved}, seen)
	repo.AssertExpectations(t)
}

func TestDrainOnceLeavesFailedDispatchUnacked(t *testing.T) {
	repo := new(mockRepository)
	good := OutboxEvent{ID: uuid.New(), ProjectID: uuid.New(), Tag: EventAssetsUploaded}
	bad := OutboxEvent{ID: uuid.New(), ProjectID: uuid.New(), Tag: EventFinalPaid}
	repo.On("ListPendingEvents", mock.Anything, 100).Return([]OutboxEvent{good, bad}, nil)
	repo.On("AckEvents", mock.Anything, []uuid.UUID{good.ID}).Return(nil)

	drainer := NewDrainer(repo, zap.NewNop(), func(ctx context.Context, ev OutboxEvent) error {
		if ev.Tag == EventFinalPaid {
			return errors.New("webhook down")
		}
		return nil
	})

	n, err := drainer.DrainOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n, "failed event stays pending for the next drain")
	repo.AssertExpectations(t)
}

func TestDrainOnceRequiresEveryDispatcher(t *testing.T) {
	repo := new(mockRepository)
	ev := OutboxEvent{ID: uuid.New(), ProjectID: uuid.New(), Tag: EventDepositPaid}
	repo.On("ListPendingEvents", mock.Anything, 100).Return([]OutboxEvent{ev}, nil)
	repo.On("AckEvents", mock.Anything, []uuid.UUID(nil)).Return(nil)

	ok := func(ctx context.Context, ev OutboxEvent) error { return nil }
	failing := func(ctx context.Context, ev OutboxEvent) error { return errors.New("nope") }
	drainer := NewDrainer(repo, zap.NewNop(), ok, failing)

	n, err := drainer.DrainOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDrainOnceSkipsWhileAnotherDrainRuns(t *testing.T) {
	repo := new(mockRepository)
	ev := OutboxEvent{ID: uuid.New(), ProjectID: uuid.New(), Tag: EventDepositPaid}
	repo.On("ListPendingEvents", mock.Anything, 100).Return([]OutboxEvent{ev}, nil).Once()
	repo.On("AckEvents", mock.Anything, []uuid.UUID{ev.ID}).Return(nil).Once()

	entered := make(chan struct{})
	release := make(chan struct{})
	drainer := NewDrainer(repo, zap.NewNop(), func(ctx context.Context, ev OutboxEvent) error {
		close(entered)
		<-release
		return nil
	})

	done := make(chan int)
	go func() {
		n, err := drainer.DrainOnce(context.Background())
		assert.NoError(t, err)
		done <- n
	}()

	<-entered
	n, err := drainer.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "a drain arriving mid-run is skipped, not doubled")

	close(release)
	assert.Equal(t, 1, <-done)
	repo.AssertExpectations(t)
}

func TestDrainOnceListError(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ListPendingEvents", mock.Anything, 100).Return(nil, errors.New("db gone"))

	drainer := NewDrainer(repo, zap.NewNop())

	_, err := drainer.DrainOnce(context.Background())
	assert.Error(t, err)
	repo.AssertNotCalled(t, "AckEvents", mock.Anything, mock.Anything)
}
