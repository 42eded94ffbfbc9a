package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRequestSubmitted is a no-op.
func (n *NoopRecorder) IncRequestSubmitted() {}

// IncRequestDuplicate is a no-op.
func (n *NoopRecorder) IncRequestDuplicate() {}

// IncRequestApproved is a no-op.
func (n *NoopRecorder) IncRequestApproved() {}

// IncRequestRejected is a no-op.
func (n *NoopRecorder) IncRequestRejected() {}

// IncLinkIssued is a no-op.
func (n *NoopRecorder) IncLinkIssued() {}

// IncLinkSendFailed is a no-op.
func (n *NoopRecorder) IncLinkSendFailed() {}

// IncLinkConsumed is a no-op.
func (n *NoopRecorder) IncLinkConsumed() {}

// IncEntitlementDenied is a no-op.
func (n *NoopRecorder) IncEntitlementDenied() {}
