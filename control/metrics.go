// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for loop observability.
// Exposes counters in a thread-safe map with dynamic registration. The loop
// writes from its own goroutine; snapshots may be taken from any other.

package control

import (
	"sync"
	"time"
)

// Counter names maintained by the event loop.
const (
	MetricReceived           = "received"
	MetricEchoedFast         = "echoed_fast"
	MetricEnqueued           = "enqueued"
	MetricFlushed            = "flushed"
	MetricDroppedOverflow    = "dropped_overflow"
	MetricDroppedUnreachable = "dropped_unreachable"
)

// MetricsRegistry holds mutable and read-only metrics.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]int64
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]int64),
	}
}

// Inc adds delta to a counter, creating it at zero if absent.
func (mr *MetricsRegistry) Inc(key string, delta int64) {
	mr.mu.Lock()
	mr.metrics[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value int64) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns one counter value; zero if absent.
func (mr *MetricsRegistry) Get(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.metrics[key]
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// LastUpdated returns when any counter last changed.
func (mr *MetricsRegistry) LastUpdated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
