package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the session engine.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the session engine.
	MetricLoginFailure
	// MetricLoginRateLimited is an exported constant or variable used by the session engine.
	MetricLoginRateLimited
	// MetricRefreshSuccess is an exported constant or variable used by the session engine.
	MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the session engine.
	MetricRefreshFailure
	// MetricRefreshRateLimited is an exported constant or variable used by the session engine.
	MetricRefreshRateLimited
	// MetricRefreshReuseDetected is an exported constant or variable used by the session engine.
	MetricRefreshReuseDetected
	// MetricRevokedReplayDetected is an exported constant or variable used by the session engine.
	MetricRevokedReplayDetected
	// MetricFamilyRevoked is an exported constant or variable used by the session engine.
	MetricFamilyRevoked
	// MetricTokenVersionBumped is an exported constant or variable used by the session engine.
	MetricTokenVersionBumped
	// MetricTokenRevokedRejected is an exported constant or variable used by the session engine.
	MetricTokenRevokedRejected
	// MetricCSRFRejected is an exported constant or variable used by the session engine.
	MetricCSRFRejected
	// MetricRateLimitHit is an exported constant or variable used by the session engine.
	MetricRateLimitHit
	// MetricSessionCreated is an exported constant or variable used by the session engine.
	MetricSessionCreated
	// MetricSessionInvalidated is an exported constant or variable used by the session engine.
	MetricSessionInvalidated
	// MetricLogout is an exported constant or variable used by the session engine.
	MetricLogout
	// MetricLogoutAll is an exported constant or variable used by the session engine.
	MetricLogoutAll
	// MetricPasswordChangeSuccess is an exported constant or variable used by the session engine.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeInvalidOld is an exported constant or variable used by the session engine.
	MetricPasswordChangeInvalidOld
	// MetricPasswordChangeReuseRejected is an exported constant or variable used by the session engine.
	MetricPasswordChangeReuseRejected
	// MetricAccountCreationSuccess is an exported constant or variable used by the session engine.
	MetricAccountCreationSuccess
	// MetricAccountCreationDuplicate is an exported constant or variable used by the session engine.
	MetricAccountCreationDuplicate
	// MetricAccountCreationRateLimited is an exported constant or variable used by the session engine.
	MetricAccountCreationRateLimited
	// MetricPermissionDenied is an exported constant or variable used by the session engine.
	MetricPermissionDenied
	// MetricValidateLatency is an exported constant or variable used by the session engine.
	MetricValidateLatency
	// MetricIDCount is an exported constant or variable used by the session engine.
	MetricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls metric collection behavior.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and optional latency histograms.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount]metricHistogram
}

// Snapshot is a point-in-time deep copy of all metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Enabled describes the enabled operation and its observable behavior.
//
// Enabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled describes the latencyenabled operation and its observable behavior.
//
// LatencyEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc describes the inc operation and its observable behavior.
//
// Inc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe describes the observe operation and its observable behavior.
//
// Observe does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= MetricIDCount {
		return
	}
	if id != MetricValidateLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value describes the value operation and its observable behavior.
//
// Value does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricValidateLatency].buckets[i])
		}
		s.Histograms[MetricValidateLatency] = buckets
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
