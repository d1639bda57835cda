package metrics

import "time"

// NoopRecorder discards all metric events.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (*NoopRecorder) IncChatTurn()                                     {}
func (*NoopRecorder) IncQuotaRejected()                                {}
func (*NoopRecorder) AddTokens(int, int)                               {}
func (*NoopRecorder) IncProviderError(string)                          {}
func (*NoopRecorder) ObserveProviderDuration(string, time.Duration)    {}
