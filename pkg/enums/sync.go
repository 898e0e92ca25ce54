package enums

import "fmt"

// SyncState tracks the bookkeeping status of a downstream platform handoff.
// The handoffs themselves happen outside this service; only the state lives here.
type SyncState string

const (
	SyncStatePending     SyncState = "pending"
	SyncStateSyncing     SyncState = "syncing"
	SyncStateSuccess     SyncState = "success"
	SyncStateFailed      SyncState = "failed"
	SyncStateNotRequired SyncState = "not_required"
)

var validSyncStates = []SyncState{
	SyncStatePending,
	SyncStateSyncing,
	SyncStateSuccess,
	SyncStateFailed,
	SyncStateNotRequired,
}

// String implements fmt.Stringer.
func (s SyncState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SyncState.
func (s SyncState) IsValid() bool {
	for _, candidate := range validSyncStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSyncState converts raw input into a SyncState.
func ParseSyncState(value string) (SyncState, error) {
	for _, candidate := range validSyncStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync state %q", value)
}

// SyncTarget names the downstream platform a sync state applies to.
type SyncTarget string

const (
	SyncTargetOdoo       SyncTarget = "odoo"
	SyncTargetQuickBooks SyncTarget = "quickbooks"
	SyncTargetDelivery   SyncTarget = "delivery"
)

var validSyncTargets = []SyncTarget{
	SyncTargetOdoo,
	SyncTargetQuickBooks,
	SyncTargetDelivery,
}

// String implements fmt.Stringer.
func (t SyncTarget) String() string {
	return string(t)
}

// IsValid reports whether the value is a known SyncTarget.
func (t SyncTarget) IsValid() bool {
	for _, candidate := range validSyncTargets {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSyncTarget converts raw input into a SyncTarget.
func ParseSyncTarget(value string) (SyncTarget, error) {
	for _, candidate := range validSyncTargets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync target %q", value)
}
