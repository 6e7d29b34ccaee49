// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
type Recorder interface {
	// Redirect metrics
	IncRedirect(outcome string) // outcome: "direct", "landing", "not_found"
	IncRedirectCacheHit()
	IncRedirectCacheMiss()
	ObserveRedirectDuration(duration time.Duration)

	// Link management metrics
	IncLinkCreated()
	IncLinkUpdated()
	IncLinkDeleted()
	IncClickIncremented()

	// Click recording metrics
	IncClickRecorded(status string) // status: "success", "counter_lagged"
}
