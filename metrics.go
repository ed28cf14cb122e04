package mutationq

import "time"

// Metrics captures queue-level telemetry.
type Metrics interface {
	// ObserveDrainDuration records the time a drain pass took.
	ObserveDrainDuration(duration time.Duration)
	// AddEnqueued increments the count of captured entries.
	AddEnqueued(kind Kind)
	// AddReplayed increments the count of entries replayed and removed.
	AddReplayed(kind Kind)
	// AddFailed increments the count of replay failures that halted a drain.
	AddFailed(kind Kind)
	// SetPending updates the current pending entry count.
	SetPending(count int)
}

// NopMetrics is a no-op metrics recorder.
type NopMetrics struct{}

// ObserveDrainDuration implements Metrics.
func (NopMetrics) ObserveDrainDuration(time.Duration) {}

// AddEnqueued implements Metrics.
func (NopMetrics) AddEnqueued(Kind) {}

// AddReplayed implements Metrics.
func (NopMetrics) AddReplayed(Kind) {}

// AddFailed implements Metrics.
func (NopMetrics) AddFailed(Kind) {}

// SetPending implements Metrics.
func (NopMetrics) SetPending(int) {}
