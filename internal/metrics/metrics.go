// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Chat turn metrics
	IncChatTurn()
	IncQuotaRejected()
	AddTokens(inputTokens, outputTokens int)

	// Vendor call metrics
	IncProviderError(provider string)
	ObserveProviderDuration(provider string, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
