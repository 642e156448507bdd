package clutchcall

import "sync/atomic"

// MetricID identifies one gateway counter.
type MetricID uint16

const (
	// MetricRegisterSuccess counts accepted registrations.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterDuplicate counts registrations rejected as duplicates.
	MetricRegisterDuplicate
	// MetricLoginSuccess counts password checks that produced a temporary token.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected credential checks.
	MetricLoginFailure
	// MetricMFASetupSuccess counts provisioned secrets.
	MetricMFASetupSuccess
	// MetricMFASetupRejected counts setup calls for already-enabled accounts.
	MetricMFASetupRejected
	// MetricMFASuccess counts code validations that produced an access token.
	MetricMFASuccess
	// MetricMFAFailure counts rejected code validations.
	MetricMFAFailure
	// MetricValidateSuccess counts accepted access-token checks.
	MetricValidateSuccess
	// MetricValidateFailure counts rejected access-token checks.
	MetricValidateFailure
	// MetricStoreFailure counts credential-backend errors.
	MetricStoreFailure
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free gateway counters. A nil or disabled Metrics is safe
// to use and counts nothing.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil || !m.enabled {
		return s
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
