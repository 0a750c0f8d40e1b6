// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Gateway metrics
	IncCreation(creationType string)
	IncProviderFailure(creationType string)
	IncQuotaRejected()
	ObserveProviderDuration(duration time.Duration)

	// Feed/social metrics
	IncPublishToggled()
	IncLikeToggled()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
