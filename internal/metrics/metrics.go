// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Access request lifecycle metrics
	IncRequestSubmitted()
	IncRequestDuplicate()
	IncRequestApproved()
	IncRequestRejected()

	// Sign-in link metrics
	IncLinkIssued()
	IncLinkSendFailed()
	IncLinkConsumed()

	// Entitlement gate metrics
	IncEntitlementDenied()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
