package mutationq

import (
	"context"
	"errors"
	"time"
)

const defaultSweepEvery = time.Hour

// ErrSweepRetentionInvalid is returned when the sweeper retention is not positive.
var ErrSweepRetentionInvalid = errors.New("mutationq: sweep retention must be positive")

// BlobSweeperConfig controls periodic removal of orphaned blobs.
type BlobSweeperConfig struct {
	// Retention keeps unreferenced blobs younger than now-retention (required).
	Retention time.Duration
	// CheckEvery is the interval between sweeps.
	CheckEvery time.Duration
	// Clock overrides time source (useful for tests).
	Clock Clock
	// Logger receives warnings about sweep failures.
	Logger Logger
}

// SweepResult reports what a sweep pass did.
type SweepResult struct {
	Scanned int
	Deleted int
}

// BlobSweeper deletes blobs no pending Upload entry references.
// Only run it when the blob namespace belongs to this queue alone.
type BlobSweeper struct {
	queue *Queue
	blobs *BlobStore
	cfg   BlobSweeperConfig
}

// NewBlobSweeper creates a sweeper with defaults applied.
func NewBlobSweeper(queue *Queue, blobs *BlobStore, cfg BlobSweeperConfig) (*BlobSweeper, error) {
	if queue == nil || blobs == nil {
		return nil, ErrStoreRequired
	}
	if cfg.Retention <= 0 {
		return nil, ErrSweepRetentionInvalid
	}
	if cfg.CheckEvery <= 0 {
		cfg.CheckEvery = defaultSweepEvery
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = NopLogger{}
	}

	return &BlobSweeper{queue: queue, blobs: blobs, cfg: cfg}, nil
}

// Run sweeps once immediately and then every CheckEvery until ctx is canceled.
func (s *BlobSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.CheckEvery)
	defer ticker.Stop()

	if _, err := s.Ensure(ctx); err != nil {
		s.cfg.Logger.Warn("mutationq blob sweep failed", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Ensure(ctx); err != nil {
				s.cfg.Logger.Warn("mutationq blob sweep failed", "err", err)
			}
		}
	}
}

// Ensure executes a single sweep pass.
func (s *BlobSweeper) Ensure(ctx context.Context) (SweepResult, error) {
	before := s.cfg.Clock.Now().Add(-s.cfg.Retention)

	// Blobs are listed before entries so an upload enqueued in between is still seen as a reference.
	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	entries, err := s.queue.List(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	referenced := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if upload, ok := entry.Op.(Upload); ok {
			referenced[upload.BlobID] = struct{}{}
		}
	}

	result := SweepResult{Scanned: len(blobs)}
	for _, blob := range blobs {
		if _, ok := referenced[blob.ID]; ok {
			continue
		}
		if blob.CreatedAt.After(before) {
			continue
		}
		if err := s.blobs.Delete(ctx, blob.ID); err != nil {
			return result, err
		}
		result.Deleted++
	}
	if result.Deleted > 0 {
		s.cfg.Logger.Info("mutationq orphaned blobs removed", "deleted", result.Deleted, "scanned", result.Scanned)
	}

	return result, nil
}
