package natskv

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/velmie/mutationq"
)

// ErrBucketRequired is returned when a nil KeyValue handle is provided.
var ErrBucketRequired = errors.New("mutationq natskv: bucket is required")

var keyEncoding = base64.RawURLEncoding

// Store implements mutationq.KV over a JetStream KeyValue bucket.
type Store struct {
	kv     jetstream.KeyValue
	logger mutationq.Logger
}

var _ mutationq.KV = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger used to report skipped keys.
func WithLogger(logger mutationq.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore wraps an existing bucket.
func NewStore(kv jetstream.KeyValue, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, ErrBucketRequired
	}

	s := &Store{kv: kv}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = mutationq.NopLogger{}
	}

	return s, nil
}

// Bind opens the bucket named bucket, creating it when it does not exist.
func Bind(ctx context.Context, js jetstream.JetStream, bucket string, opts ...Option) (*Store, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
	if err != nil {
		return nil, fmt.Errorf("mutationq natskv: bind bucket %s failed: %w", bucket, err)
	}

	return NewStore(kv, opts...)
}

// Put stores value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.kv.Put(ctx, encodeKey(key), value); err != nil {
		return fmt.Errorf("mutationq natskv: put failed: %w", err)
	}

	return nil
}

// Get returns the latest value under key or mutationq.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, encodeKey(key))
	if isMissing(err) {
		return nil, mutationq.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mutationq natskv: get failed: %w", err)
	}

	return entry.Value(), nil
}

// Delete places a delete marker on key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(ctx, encodeKey(key))
	if err != nil && !isMissing(err) {
		return fmt.Errorf("mutationq natskv: delete failed: %w", err)
	}

	return nil
}

// Scan lists the live keys and then fetches each value. Keys deleted in between are skipped.
func (s *Store) Scan(ctx context.Context, fn func(key string, value []byte) error) error {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return err
	}

	for _, encoded := range keys {
		key, err := decodeKey(encoded)
		if err != nil {
			s.logger.Warn("mutationq natskv skipping foreign key", "key", encoded, "err", err)

			continue
		}
		entry, err := s.kv.Get(ctx, encoded)
		if isMissing(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("mutationq natskv: get %s failed: %w", key, err)
		}
		if err := fn(key, entry.Value()); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) listKeys(ctx context.Context) ([]string, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("mutationq natskv: list keys failed: %w", err)
	}
	defer func() {
		_ = lister.Stop()
	}()

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}

	return keys, nil
}

func isMissing(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}

func encodeKey(key string) string {
	return keyEncoding.EncodeToString([]byte(key))
}

func decodeKey(encoded string) (string, error) {
	raw, err := keyEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
