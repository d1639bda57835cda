package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ChatTurns           uint64
	QuotaRejections     uint64
	InputTokens         int64
	OutputTokens        int64
	ProviderErrors      map[string]uint64
	ProviderCallCount   map[string]uint64
	ProviderCallTotalNs map[string]int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	chatTurns       uint64
	quotaRejections uint64
	inputTokens     int64
	outputTokens    int64

	mu              sync.Mutex
	providerErrors  map[string]uint64
	providerCalls   map[string]uint64
	providerTotalNs map[string]int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		providerErrors:  make(map[string]uint64),
		providerCalls:   make(map[string]uint64),
		providerTotalNs: make(map[string]int64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		ChatTurns:           atomic.LoadUint64(&m.chatTurns),
		QuotaRejections:     atomic.LoadUint64(&m.quotaRejections),
		InputTokens:         atomic.LoadInt64(&m.inputTokens),
		OutputTokens:        atomic.LoadInt64(&m.outputTokens),
		ProviderErrors:      make(map[string]uint64, len(m.providerErrors)),
		ProviderCallCount:   make(map[string]uint64, len(m.providerCalls)),
		ProviderCallTotalNs: make(map[string]int64, len(m.providerTotalNs)),
	}
	for k, v := range m.providerErrors {
		snap.ProviderErrors[k] = v
	}
	for k, v := range m.providerCalls {
		snap.ProviderCallCount[k] = v
	}
	for k, v := range m.providerTotalNs {
		snap.ProviderCallTotalNs[k] = v
	}
	return snap
}

// IncChatTurn increments the completed chat turn counter.
func (m *InMemoryRecorder) IncChatTurn() {
	atomic.AddUint64(&m.chatTurns, 1)
}

// IncQuotaRejected increments the quota rejection counter.
func (m *InMemoryRecorder) IncQuotaRejected() {
	atomic.AddUint64(&m.quotaRejections, 1)
}

// AddTokens accumulates token usage.
func (m *InMemoryRecorder) AddTokens(inputTokens, outputTokens int) {
	atomic.AddInt64(&m.inputTokens, int64(inputTokens))
	atomic.AddInt64(&m.outputTokens, int64(outputTokens))
}

// IncProviderError increments the error counter for a provider.
func (m *InMemoryRecorder) IncProviderError(provider string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providerErrors[provider]++
}

// ObserveProviderDuration records a vendor call duration.
func (m *InMemoryRecorder) ObserveProviderDuration(provider string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providerCalls[provider]++
	m.providerTotalNs[provider] += duration.Nanoseconds()
}
