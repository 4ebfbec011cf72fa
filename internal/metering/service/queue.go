// Package service implements the bounded background queue that records
// invocation usage with the external metering collaborator without ever
// blocking the caller that produced it.
package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/secrets/internal/metering/domain"
)

// Recorder submits one usage record to the external metering collaborator.
type Recorder interface {
	Record(ctx context.Context, record domain.UsageRecord) error
}

// Queue is a bounded, non-blocking fire-and-forget queue of usage records.
// Enqueue never blocks: a full queue drops the record and logs it, the same
// "failure is logged, not raised" contract the invocation pipeline applies
// to step 9 as a whole.
type Queue struct {
	jobs     chan domain.UsageRecord
	recorder Recorder
	logger   *slog.Logger
	workers  int
	group    *errgroup.Group
}

// NewQueue creates a Queue with the given buffer capacity and worker count.
// Call Start before the first Enqueue and Stop during shutdown to drain.
func NewQueue(recorder Recorder, logger *slog.Logger, bufferSize, workers int) *Queue {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		jobs:     make(chan domain.UsageRecord, bufferSize),
		recorder: recorder,
		logger:   logger,
		workers:  workers,
		group:    &errgroup.Group{},
	}
}

// Start launches the worker pool. ctx cancellation stops workers after they
// finish any in-flight record.
func (q *Queue) Start(ctx context.Context) {
	for range q.workers {
		q.group.Go(func() error {
			return q.run(ctx)
		})
	}
}

func (q *Queue) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case record, ok := <-q.jobs:
			if !ok {
				return nil
			}
			if err := q.recorder.Record(ctx, record); err != nil && q.logger != nil {
				q.logger.Error("failed to record metered usage",
					slog.String("internal_id", record.InternalID),
					slog.Any("error", err),
				)
			}
		}
	}
}

// Enqueue submits record for asynchronous recording. It never blocks: if the
// buffer is full the record is dropped and logged, never surfaced to the
// invocation that produced it.
func (q *Queue) Enqueue(record domain.UsageRecord) {
	select {
	case q.jobs <- record:
	default:
		if q.logger != nil {
			q.logger.Warn("metering queue full, dropping usage record",
				slog.String("internal_id", record.InternalID),
			)
		}
	}
}

// Stop closes the queue and waits for in-flight workers to finish.
func (q *Queue) Stop() error {
	close(q.jobs)
	return q.group.Wait()
}
