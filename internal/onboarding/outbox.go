package onboarding

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatch delivers one drained outbox event to an automation consumer
// (websocket hub, webhook, notifier). A dispatch error leaves the event
// unacked so the next drain retries it.
type Dispatch func(ctx context.Context, ev OutboxEvent) error

// Drainer pulls pending outbox events in order and acknowledges only the
// ones every dispatcher accepted. The core appends, the drainer removes;
// nothing else touches the queue.
type Drainer struct {
	repo        Repository
	dispatchers []Dispatch
	batchSize   int
	logger      *zap.Logger

	mu sync.Mutex
}

func NewDrainer(repo Repository, logger *zap.Logger, dispatchers ...Dispatch) *Drainer {
	return &Drainer{
		repo:        repo,
		dispatchers: dispatchers,
		batchSize:   100,
		logger:      logger,
	}
}

// DrainOnce processes one batch and returns how many events were acked.
// One drain at a time: a run overlapping a slow dispatcher would re-deliver
// the same un-acked events, so a call arriving mid-drain is skipped and the
// next scheduled run picks the batch up.
func (d *Drainer) DrainOnce(ctx context.Context) (int, error) {
	if !d.mu.TryLock() {
		return 0, nil
	}
	defer d.mu.Unlock()

	events, err := d.repo.ListPendingEvents(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}

	var acked []uuid.UUID
	for _, ev := range events {
		delivered := true
		for _, dispatch := range d.dispatchers {
			if err := dispatch(ctx, ev); err != nil {
				d.logger.Warn("outbox dispatch failed, will retry",
					zap.String("tag", ev.Tag),
					zap.String("project_id", ev.ProjectID.String()),
					zap.Error(err))
				delivered = false
				break
			}
		}
		if delivered {
			acked = append(acked, ev.ID)
		}
	}

	if err := d.repo.AckEvents(ctx, acked); err != nil {
		return 0, err
	}
	return len(acked), nil
}
