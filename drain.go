package mutationq

import (
	"context"
	"fmt"
	"time"
)

// Drain replays every pending entry in order against p.
//
// Each entry is removed only after p succeeds. The first failure (an error, a false result from a
// BoolProcessor, a panic or a processor timeout) halts the drain and leaves that entry and all later
// entries queued; the failure is logged and passed to the ErrorHandler, and Drain returns nil.
// Drain returns an error only when the queue itself cannot continue: the snapshot cannot be read,
// a replayed entry cannot be removed, another drain holds the queue, or ctx is done between entries.
// A processor call abandoned by a timeout also holds the queue until it returns, so replays of one
// queue never overlap.
func (q *Queue) Drain(ctx context.Context, p Processor) error {
	if p == nil {
		return ErrProcessorRequired
	}
	if !q.drainMu.TryLock() {
		return ErrDrainInProgress
	}
	defer q.drainMu.Unlock()
	if q.abandonedReplayRunning() {
		return ErrDrainInProgress
	}

	release, err := q.acquireStoreLock(ctx)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	defer func() {
		q.cfg.Metrics.ObserveDrainDuration(time.Since(start))
	}()

	entries, err := q.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	q.cfg.Logger.Debug("mutationq drain started", "pending", len(entries))

	replayed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := q.replay(ctx, p, entry); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.recordFailure(ctx, entry, err)
			q.cfg.Logger.Info("mutationq drain halted", "replayed", replayed, "remaining", len(entries)-replayed)

			return nil
		}

		if err := q.Remove(ctx, entry.ID); err != nil {
			q.cfg.Logger.Error("mutationq replayed entry could not be removed", "id", entry.ID, "err", err)

			return err
		}
		replayed++
		q.cfg.Metrics.AddReplayed(entry.Kind())
	}

	q.cfg.Logger.Debug("mutationq drain completed", "replayed", replayed)

	return nil
}

func (q *Queue) replay(ctx context.Context, p Processor, entry Entry) error {
	if q.cfg.ProcessorTimeout <= 0 {
		return process(ctx, p, entry)
	}

	ctx, cancel := context.WithTimeout(ctx, q.cfg.ProcessorTimeout)
	defer cancel()

	// A processor that ignores ctx must not stall the drain past its timeout.
	done := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		done <- process(ctx, p, entry)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// The call may still reach the backend; no replay starts until it returns.
		q.abandoned = finished
		q.cfg.Logger.Warn("mutationq processor ignored its deadline", "id", entry.ID, "timeout", q.cfg.ProcessorTimeout)

		return fmt.Errorf("mutationq: processor timed out after %s: %w", q.cfg.ProcessorTimeout, ctx.Err())
	}
}

// abandonedReplayRunning reports whether a timed-out processor call has not returned yet.
// Callers hold drainMu.
func (q *Queue) abandonedReplayRunning() bool {
	if q.abandoned == nil {
		return false
	}
	select {
	case <-q.abandoned:
		q.abandoned = nil

		return false
	default:
		q.cfg.Logger.Debug("mutationq drain deferred until a timed-out replay returns")

		return true
	}
}

func process(ctx context.Context, p Processor, entry Entry) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrProcessorPanic, rec)
		}
	}()

	return p.Process(ctx, entry)
}

func (q *Queue) recordFailure(ctx context.Context, entry Entry, err error) {
	q.cfg.Logger.Warn(
		"mutationq replay failed",
		"id", entry.ID,
		"kind", entry.Kind().String(),
		"created_at", entry.CreatedAt,
		"err", err,
	)
	q.cfg.Metrics.AddFailed(entry.Kind())
	if q.cfg.ErrorHandler != nil {
		q.cfg.ErrorHandler(ctx, entry, err)
	}
}

func (q *Queue) acquireStoreLock(ctx context.Context) (func(), error) {
	locker, ok := q.store.(Locker)
	if !ok {
		return func() {}, nil
	}

	release, acquired, err := locker.TryLock(ctx, q.cfg.LockName)
	if err != nil {
		return nil, fmt.Errorf("mutationq: acquire drain lock failed: %w", err)
	}
	if !acquired {
		q.cfg.Logger.Debug("mutationq drain lock held by another process", "lock", q.cfg.LockName)

		return nil, ErrDrainInProgress
	}

	return release, nil
}
