package mutationq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

type fakeKV struct {
	mu      sync.Mutex
	records map[string][]byte
	putErr  error
	getErr  error
	delErr  error
	scanErr error
	puts    int
}

func newFakeKV() *fakeKV {
	return &fakeKV{records: make(map[string][]byte)}
}

func (s *fakeKV) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.records[key] = append([]byte(nil), value...)
	return nil
}

func (s *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	value, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *fakeKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.records, key)
	return nil
}

func (s *fakeKV) Scan(_ context.Context, fn func(string, []byte) error) error {
	s.mu.Lock()
	if s.scanErr != nil {
		s.mu.Unlock()
		return s.scanErr
	}
	snapshot := make(map[string][]byte, len(s.records))
	for k, v := range s.records {
		snapshot[k] = append([]byte(nil), v...)
	}
	s.mu.Unlock()

	for k, v := range snapshot {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeKV) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type countingKV struct {
	*fakeKV
	calls int
}

func (s *countingKV) Len(context.Context) (int, error) {
	s.calls++
	return s.fakeKV.len(), nil
}

type lockingKV struct {
	*fakeKV
	acquired bool
	lockErr  error
	names    []string
	released int
}

func (s *lockingKV) TryLock(_ context.Context, name string) (func(), bool, error) {
	s.names = append(s.names, name)
	if s.lockErr != nil {
		return nil, false, s.lockErr
	}
	if !s.acquired {
		return nil, false, nil
	}
	return func() { s.released++ }, true, nil
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sequentialIDs struct {
	mu   sync.Mutex
	next int
}

func (g *sequentialIDs) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%03d", g.next), nil
}

type captureMetrics struct {
	mu        sync.Mutex
	enqueued  map[Kind]int
	replayed  map[Kind]int
	failed    map[Kind]int
	pending   int
	pendingN  int
	durations int
}

func newCaptureMetrics() *captureMetrics {
	return &captureMetrics{
		enqueued: map[Kind]int{},
		replayed: map[Kind]int{},
		failed:   map[Kind]int{},
	}
}

func (m *captureMetrics) ObserveDrainDuration(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *captureMetrics) AddEnqueued(kind Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued[kind]++
}

func (m *captureMetrics) AddReplayed(kind Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replayed[kind]++
}

func (m *captureMetrics) AddFailed(kind Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[kind]++
}

func (m *captureMetrics) SetPending(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = count
	m.pendingN++
}

func (m *captureMetrics) pendingSnapshot() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending, m.pendingN
}

var errBoom = errors.New("boom")

func testClock() *fixedClock {
	return &fixedClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestQueue(store KV, opts ...Option) (*Queue, *fixedClock) {
	clock := testClock()
	opts = append([]Option{WithClock(clock), WithGenerator(&sequentialIDs{})}, opts...)
	return MustNewQueue(store, opts...), clock
}

func insertOp(table string, n int) Insert {
	return Insert{Table: table, Payload: json.RawMessage(fmt.Sprintf(`{"n":%d}`, n))}
}

func payloadN(t interface{ Fatalf(string, ...any) }, entry Entry) int {
	op, ok := entry.Op.(Insert)
	if !ok {
		t.Fatalf("expected insert, got %T", entry.Op)
	}
	var body struct {
		N int `json:"n"`
	}
	if err := json.Unmarshal(op.Payload, &body); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return body.N
}
