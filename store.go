package mutationq

import "context"

// KV is the durable key-value store holding one namespace of records.
// Enumeration order is not assumed to match insertion order.
type KV interface {
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Get returns the value under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Scan calls fn for every record. A non-nil error from fn stops the scan and is returned.
	Scan(ctx context.Context, fn func(key string, value []byte) error) error
}

// Counter is implemented by stores that can count records without reading them.
type Counter interface {
	// Len returns the number of records in the namespace.
	Len(ctx context.Context) (int, error)
}

// Locker is implemented by stores that can provide a lock shared across processes.
// Drain takes it for its whole duration when the entry store implements it.
type Locker interface {
	// TryLock attempts to acquire the named lock without waiting.
	// When acquired is true, release must be called exactly once.
	TryLock(ctx context.Context, name string) (release func(), acquired bool, err error)
}
