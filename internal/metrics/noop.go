package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCreation is a no-op.
func (n *NoopRecorder) IncCreation(creationType string) {}

// IncProviderFailure is a no-op.
func (n *NoopRecorder) IncProviderFailure(creationType string) {}

// IncQuotaRejected is a no-op.
func (n *NoopRecorder) IncQuotaRejected() {}

// ObserveProviderDuration is a no-op.
func (n *NoopRecorder) ObserveProviderDuration(duration time.Duration) {}

// IncPublishToggled is a no-op.
func (n *NoopRecorder) IncPublishToggled() {}

// IncLikeToggled is a no-op.
func (n *NoopRecorder) IncLikeToggled() {}
