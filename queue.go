package mutationq

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Queue captures mutations into a KV store and replays them in order.
// Construct one per store with NewQueue and pass it to whatever needs to enqueue or drain.
type Queue struct {
	store KV
	cfg   Config

	seqMu     sync.Mutex
	seq       uint64
	seqLoaded bool

	drainMu sync.Mutex
	// abandoned closes when the last timed-out processor call returns. Guarded by drainMu.
	abandoned chan struct{}
}

// NewQueue constructs a Queue over the entry namespace of a store.
func NewQueue(store KV, opts ...Option) (*Queue, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Queue{store: store, cfg: cfg.withDefaults()}, nil
}

// MustNewQueue constructs a Queue or panics on error.
func MustNewQueue(store KV, opts ...Option) *Queue {
	q, err := NewQueue(store, opts...)
	if err != nil {
		panic(err)
	}

	return q
}

// Enqueue durably captures op and returns the stored entry.
// A non-nil error means the mutation was not captured.
func (q *Queue) Enqueue(ctx context.Context, op Operation) (Entry, error) {
	op, err := normalizeOperation(op)
	if err != nil {
		return Entry{}, err
	}
	if err := op.validate(q.cfg.ValidateJSON); err != nil {
		return Entry{}, err
	}

	id, err := q.cfg.Generator.New()
	if err != nil {
		return Entry{}, err
	}

	q.seqMu.Lock()
	defer q.seqMu.Unlock()

	if err := q.loadSeq(ctx); err != nil {
		return Entry{}, err
	}

	if err := q.ensureUnused(ctx, id); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:        id,
		Seq:       q.seq + 1,
		CreatedAt: q.cfg.Clock.Now(),
		Op:        op,
	}
	data, err := EncodeEntry(entry)
	if err != nil {
		return Entry{}, err
	}
	if err := q.store.Put(ctx, entry.ID, data); err != nil {
		return Entry{}, fmt.Errorf("mutationq: persist entry failed: %w", err)
	}
	q.seq = entry.Seq

	q.cfg.Metrics.AddEnqueued(op.Kind())
	q.cfg.Logger.Debug("mutationq entry enqueued", "id", entry.ID, "kind", op.Kind().String(), "seq", entry.Seq)

	return entry, nil
}

// List returns every pending entry sorted by CreatedAt, then Seq.
// The result is a snapshot; entries enqueued while it is built may be missing.
func (q *Queue) List(ctx context.Context) ([]Entry, error) {
	entries := make([]Entry, 0)
	err := q.store.Scan(ctx, func(key string, value []byte) error {
		entry, err := DecodeEntry(value)
		if err != nil {
			return fmt.Errorf("mutationq: key %s: %w", key, err)
		}
		entries = append(entries, entry)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mutationq: list failed: %w", err)
	}

	slices.SortFunc(entries, compareEntries)

	return entries, nil
}

// Get returns a single pending entry or ErrNotFound.
func (q *Queue) Get(ctx context.Context, id string) (Entry, error) {
	data, err := q.store.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return Entry{}, ErrNotFound
		}

		return Entry{}, fmt.Errorf("mutationq: get %s failed: %w", id, err)
	}

	return DecodeEntry(data)
}

// Remove deletes the entry with id. Removing a missing id is not an error.
func (q *Queue) Remove(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := q.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("mutationq: remove %s failed: %w", id, err)
	}

	return nil
}

// Count returns the number of pending entries.
func (q *Queue) Count(ctx context.Context) (int, error) {
	if counter, ok := q.store.(Counter); ok {
		count, err := counter.Len(ctx)
		if err != nil {
			return 0, fmt.Errorf("mutationq: count failed: %w", err)
		}

		return count, nil
	}

	entries, err := q.List(ctx)
	if err != nil {
		return 0, err
	}

	return len(entries), nil
}

// ensureUnused rejects an id that already names a pending entry, since Put would overwrite it.
// Callers hold seqMu.
func (q *Queue) ensureUnused(ctx context.Context, id string) error {
	_, err := q.store.Get(ctx, id)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	case isNotFound(err):
		return nil
	default:
		return fmt.Errorf("mutationq: check id %s failed: %w", id, err)
	}
}

// loadSeq seeds the sequence counter from the highest persisted Seq.
// Callers hold seqMu.
func (q *Queue) loadSeq(ctx context.Context) error {
	if q.seqLoaded {
		return nil
	}

	var highest uint64
	err := q.store.Scan(ctx, func(key string, value []byte) error {
		entry, err := DecodeEntry(value)
		if err != nil {
			q.cfg.Logger.Warn("mutationq skipping unreadable record while loading sequence", "key", key, "err", err)

			return nil
		}
		highest = max(highest, entry.Seq)

		return nil
	})
	if err != nil {
		return fmt.Errorf("mutationq: load sequence failed: %w", err)
	}

	q.seq = highest
	q.seqLoaded = true

	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
