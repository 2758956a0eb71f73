package enums

import "fmt"

// ImportBatchStatus describes the lifecycle state of a bulk-import batch.
type ImportBatchStatus string

const (
	ImportBatchStatusPending    ImportBatchStatus = "pending"
	ImportBatchStatusProcessing ImportBatchStatus = "processing"
	ImportBatchStatusCompleted  ImportBatchStatus = "completed"
	ImportBatchStatusFailed     ImportBatchStatus = "failed"
)

var validImportBatchStatuses = []ImportBatchStatus{
	ImportBatchStatusPending,
	ImportBatchStatusProcessing,
	ImportBatchStatusCompleted,
	ImportBatchStatusFailed,
}

// Transitions are forward-only: pending -> processing -> {completed, failed}.
var importBatchTransitions = map[ImportBatchStatus][]ImportBatchStatus{
	ImportBatchStatusPending:    {ImportBatchStatusProcessing},
	ImportBatchStatusProcessing: {ImportBatchStatusCompleted, ImportBatchStatusFailed},
}

// String returns the literal string for the status.
func (s ImportBatchStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is known.
func (s ImportBatchStatus) IsValid() bool {
	for _, candidate := range validImportBatchStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s ImportBatchStatus) IsTerminal() bool {
	return len(importBatchTransitions[s]) == 0 && s.IsValid()
}

// CanTransitionTo reports whether the transition to next is allowed.
func (s ImportBatchStatus) CanTransitionTo(next ImportBatchStatus) bool {
	for _, candidate := range importBatchTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseImportBatchStatus converts raw input into an ImportBatchStatus.
func ParseImportBatchStatus(value string) (ImportBatchStatus, error) {
	for _, candidate := range validImportBatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid import batch status %q", value)
}
