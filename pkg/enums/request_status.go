package enums

import "fmt"

// RequestStatus tracks an internal product request from submission to handout.
type RequestStatus string

const (
	RequestStatusPendingApproval    RequestStatus = "pending_approval"
	RequestStatusApproved           RequestStatus = "approved"
	RequestStatusRejected           RequestStatus = "rejected"
	RequestStatusReadyForCollection RequestStatus = "ready_for_collection"
	RequestStatusCollected          RequestStatus = "collected"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPendingApproval,
	RequestStatusApproved,
	RequestStatusRejected,
	RequestStatusReadyForCollection,
	RequestStatusCollected,
}

// String implements fmt.Stringer.
func (s RequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RequestStatus.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRequestStatus converts raw input into a RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}
