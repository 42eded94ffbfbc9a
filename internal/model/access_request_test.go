package model

import "testing"

func TestRequestStatusIsValid(t *testing.T) {
	tests := []struct {
		name   string
		status RequestStatus
		want   bool
	}{
		{"pending", StatusPending, true},
		{"approved", StatusApproved, true},
		{"rejected", StatusRejected, true},
		{"empty", RequestStatus(""), false},
		{"unknown", RequestStatus("archived"), false},
		{"case_sensitive", RequestStatus("Pending"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.status.IsValid(); got != test.want {
				t.Errorf("IsValid(%q) = %v, want %v", test.status, got, test.want)
			}
		})
	}
}

func TestAccessRequestIsPending(t *testing.T) {
	req := &AccessRequest{Status: StatusPending}
	if !req.IsPending() {
		t.Error("expected pending request to report IsPending")
	}

	req.Status = StatusApproved
	if req.IsPending() {
		t.Error("approved request must not report IsPending")
	}
}
