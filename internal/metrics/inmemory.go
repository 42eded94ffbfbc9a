package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RequestsSubmitted  uint64
	RequestsDuplicate  uint64
	RequestsApproved   uint64
	RequestsRejected   uint64
	LinksIssued        uint64
	LinkSendFailures   uint64
	LinksConsumed      uint64
	EntitlementDenials uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	requestsSubmitted  uint64
	requestsDuplicate  uint64
	requestsApproved   uint64
	requestsRejected   uint64
	linksIssued        uint64
	linkSendFailures   uint64
	linksConsumed      uint64
	entitlementDenials uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RequestsSubmitted:  atomic.LoadUint64(&m.requestsSubmitted),
		RequestsDuplicate:  atomic.LoadUint64(&m.requestsDuplicate),
		RequestsApproved:   atomic.LoadUint64(&m.requestsApproved),
		RequestsRejected:   atomic.LoadUint64(&m.requestsRejected),
		LinksIssued:        atomic.LoadUint64(&m.linksIssued),
		LinkSendFailures:   atomic.LoadUint64(&m.linkSendFailures),
		LinksConsumed:      atomic.LoadUint64(&m.linksConsumed),
		EntitlementDenials: atomic.LoadUint64(&m.entitlementDenials),
	}
}

// IncRequestSubmitted increments the submitted counter.
func (m *InMemoryRecorder) IncRequestSubmitted() {
	atomic.AddUint64(&m.requestsSubmitted, 1)
}

// IncRequestDuplicate increments the duplicate counter.
func (m *InMemoryRecorder) IncRequestDuplicate() {
	atomic.AddUint64(&m.requestsDuplicate, 1)
}

// IncRequestApproved increments the approved counter.
func (m *InMemoryRecorder) IncRequestApproved() {
	atomic.AddUint64(&m.requestsApproved, 1)
}

// IncRequestRejected increments the rejected counter.
func (m *InMemoryRecorder) IncRequestRejected() {
	atomic.AddUint64(&m.requestsRejected, 1)
}

// IncLinkIssued increments the issued-link counter.
func (m *InMemoryRecorder) IncLinkIssued() {
	atomic.AddUint64(&m.linksIssued, 1)
}

// IncLinkSendFailed increments the failed-send counter.
func (m *InMemoryRecorder) IncLinkSendFailed() {
	atomic.AddUint64(&m.linkSendFailures, 1)
}

// IncLinkConsumed increments the consumed-link counter.
func (m *InMemoryRecorder) IncLinkConsumed() {
	atomic.AddUint64(&m.linksConsumed, 1)
}

// IncEntitlementDenied increments the denial counter.
func (m *InMemoryRecorder) IncEntitlementDenied() {
	atomic.AddUint64(&m.entitlementDenials, 1)
}
