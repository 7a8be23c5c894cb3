// Package metrics provides lock-free counters and a dispatch-latency
// histogram for client observability.
//
// Counters live in cache-line-padded uint64 slots incremented atomically.
// The write path is allocation-free.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import the root ebina package or any sibling package.
//   - Expose global metric registries.
package metrics

import (
	"sync/atomic"
	"time"
)

// ID identifies one counter slot.
type ID uint16

const (
	// MetricDispatch counts every request sent through the dispatcher.
	MetricDispatch ID = iota
	// MetricUnauthorized counts 401 responses converted to AuthRequired.
	MetricUnauthorized
	// MetricReauthStarted counts recovery episodes that began a new run.
	MetricReauthStarted
	// MetricReauthJoined counts callers that joined an in-flight run.
	MetricReauthJoined
	// MetricReauthSuccess counts recovery runs that installed a token.
	MetricReauthSuccess
	// MetricReauthFailure counts recovery runs that ended terminally.
	MetricReauthFailure
	// MetricCeremonyChallenge counts step-up challenges received.
	MetricCeremonyChallenge
	// MetricCeremonyShortCircuit counts phase-1 responses that needed no ceremony.
	MetricCeremonyShortCircuit
	// MetricAuthenticatorFailure counts local authenticator aborts.
	MetricAuthenticatorFailure
	// MetricPasswordFallback counts WebAuthn-to-password fallbacks.
	MetricPasswordFallback
	// MetricRetryReplayed counts operations re-run by the boundary.
	MetricRetryReplayed
	// MetricDispatchLatency indexes the dispatch latency histogram.
	MetricDispatchLatency
	idCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls metric collection.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and an optional latency histogram. A nil
// receiver is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [idCount]paddedCounter
	histogram     [histBucketCount]uint64
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	Counters  map[ID]uint64
	LatencyMS []uint64
}

// New creates a Metrics instance. When cfg.Enabled is false all
// operations are no-ops.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Inc increments one counter.
func (m *Metrics) Inc(id ID) {
	if m == nil || !m.enabled || id >= idCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records one dispatch latency sample.
func (m *Metrics) Observe(d time.Duration) {
	if m == nil || !m.enableLatency {
		return
	}
	atomic.AddUint64(&m.histogram[bucketIndex(d)], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id ID) uint64 {
	if m == nil || id >= idCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// TakeSnapshot deep-copies all counters and histogram buckets.
func (m *Metrics) TakeSnapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{Counters: map[ID]uint64{}}
	}

	s := Snapshot{Counters: make(map[ID]uint64, int(idCount))}
	for id := ID(0); id < idCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		s.LatencyMS = make([]uint64, histBucketCount)
		for i := range s.LatencyMS {
			s.LatencyMS[i] = atomic.LoadUint64(&m.histogram[i])
		}
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
