package mutationq

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
)

// BlobRecord is the binary payload of an Upload, stored apart from the queue entries.
type BlobRecord struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type,omitempty"`
	Data        []byte    `json:"data"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlobInfo describes a stored blob without its bytes.
type BlobInfo struct {
	ID          string
	ContentType string
	Size        int
	CreatedAt   time.Time
}

// BlobStore keeps upload payloads in their own KV namespace, addressed by blob id.
// Removing a queue entry never touches its blob.
type BlobStore struct {
	kv    KV
	clock Clock
}

// BlobOption configures a BlobStore.
type BlobOption func(*BlobStore)

// WithBlobClock sets the time source used to stamp blobs.
func WithBlobClock(clock Clock) BlobOption {
	return func(b *BlobStore) {
		b.clock = clock
	}
}

// NewBlobStore constructs a BlobStore over the blob namespace of a store.
func NewBlobStore(kv KV, opts ...BlobOption) (*BlobStore, error) {
	if kv == nil {
		return nil, ErrStoreRequired
	}

	b := &BlobStore{kv: kv}
	for _, opt := range opts {
		opt(b)
	}
	if b.clock == nil {
		b.clock = SystemClock{}
	}

	return b, nil
}

// Put stores rec under rec.ID, stamping CreatedAt when it is zero.
func (b *BlobStore) Put(ctx context.Context, rec BlobRecord) (BlobRecord, error) {
	if rec.ID == "" {
		return BlobRecord{}, ErrBlobIDRequired
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = b.clock.Now()
	}

	data, err := gojson.Marshal(rec)
	if err != nil {
		return BlobRecord{}, fmt.Errorf("mutationq: encode blob %s: %w", rec.ID, err)
	}
	if err := b.kv.Put(ctx, rec.ID, data); err != nil {
		return BlobRecord{}, fmt.Errorf("mutationq: persist blob %s failed: %w", rec.ID, err)
	}

	return rec, nil
}

// Get returns the blob stored under id or ErrNotFound.
func (b *BlobStore) Get(ctx context.Context, id string) (BlobRecord, error) {
	data, err := b.kv.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return BlobRecord{}, ErrNotFound
		}

		return BlobRecord{}, fmt.Errorf("mutationq: get blob %s failed: %w", id, err)
	}

	return decodeBlob(id, data)
}

// Delete removes the blob stored under id. Deleting a missing blob is not an error.
func (b *BlobStore) Delete(ctx context.Context, id string) error {
	if err := b.kv.Delete(ctx, id); err != nil {
		return fmt.Errorf("mutationq: delete blob %s failed: %w", id, err)
	}

	return nil
}

// List returns metadata for every stored blob ordered by id.
func (b *BlobStore) List(ctx context.Context) ([]BlobInfo, error) {
	infos := make([]BlobInfo, 0)
	err := b.kv.Scan(ctx, func(key string, value []byte) error {
		rec, err := decodeBlob(key, value)
		if err != nil {
			return err
		}
		infos = append(infos, BlobInfo{
			ID:          rec.ID,
			ContentType: rec.ContentType,
			Size:        len(rec.Data),
			CreatedAt:   rec.CreatedAt,
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mutationq: list blobs failed: %w", err)
	}

	slices.SortFunc(infos, func(a, b BlobInfo) int {
		return strings.Compare(a.ID, b.ID)
	})

	return infos, nil
}

func decodeBlob(key string, data []byte) (BlobRecord, error) {
	var rec BlobRecord
	if err := gojson.Unmarshal(data, &rec); err != nil {
		return BlobRecord{}, fmt.Errorf("%w: blob %s: %v", ErrCorruptRecord, key, err)
	}
	if rec.ID == "" {
		rec.ID = key
	}

	return rec, nil
}
