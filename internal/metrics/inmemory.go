package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CreationsByType         map[string]uint64
	ProviderFailuresByType  map[string]uint64
	QuotaRejected           uint64
	ProviderDurationCount   uint64
	ProviderDurationTotalNs int64
	PublishToggles          uint64
	LikeToggles             uint64
}

// InMemoryRecorder stores metrics in memory for tests and the metrics endpoint.
type InMemoryRecorder struct {
	mu                      sync.Mutex
	creationsByType         map[string]uint64
	providerFailuresByType  map[string]uint64
	quotaRejected           uint64
	providerDurationCount   uint64
	providerDurationTotalNs int64
	publishToggles          uint64
	likeToggles             uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		creationsByType:        make(map[string]uint64),
		providerFailuresByType: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	creations := make(map[string]uint64, len(m.creationsByType))
	for k, v := range m.creationsByType {
		creations[k] = v
	}
	failures := make(map[string]uint64, len(m.providerFailuresByType))
	for k, v := range m.providerFailuresByType {
		failures[k] = v
	}

	return Snapshot{
		CreationsByType:         creations,
		ProviderFailuresByType:  failures,
		QuotaRejected:           atomic.LoadUint64(&m.quotaRejected),
		ProviderDurationCount:   atomic.LoadUint64(&m.providerDurationCount),
		ProviderDurationTotalNs: atomic.LoadInt64(&m.providerDurationTotalNs),
		PublishToggles:          atomic.LoadUint64(&m.publishToggles),
		LikeToggles:             atomic.LoadUint64(&m.likeToggles),
	}
}

// IncCreation increments the creation counter for a type.
func (m *InMemoryRecorder) IncCreation(creationType string) {
	m.mu.Lock()
	m.creationsByType[creationType]++
	m.mu.Unlock()
}

// IncProviderFailure increments the provider failure counter for a type.
func (m *InMemoryRecorder) IncProviderFailure(creationType string) {
	m.mu.Lock()
	m.providerFailuresByType[creationType]++
	m.mu.Unlock()
}

// IncQuotaRejected increments the quota rejection counter.
func (m *InMemoryRecorder) IncQuotaRejected() {
	atomic.AddUint64(&m.quotaRejected, 1)
}

// ObserveProviderDuration records a provider call duration.
func (m *InMemoryRecorder) ObserveProviderDuration(duration time.Duration) {
	atomic.AddUint64(&m.providerDurationCount, 1)
	atomic.AddInt64(&m.providerDurationTotalNs, duration.Nanoseconds())
}

// IncPublishToggled increments the publish toggle counter.
func (m *InMemoryRecorder) IncPublishToggled() {
	atomic.AddUint64(&m.publishToggles, 1)
}

// IncLikeToggled increments the like toggle counter.
func (m *InMemoryRecorder) IncLikeToggled() {
	atomic.AddUint64(&m.likeToggles, 1)
}
