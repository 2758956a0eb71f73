package enums

import "testing"

func TestImportBatchStatusTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from    ImportBatchStatus
		to      ImportBatchStatus
		allowed bool
	}{
		{ImportBatchStatusPending, ImportBatchStatusProcessing, true},
		{ImportBatchStatusProcessing, ImportBatchStatusCompleted, true},
		{ImportBatchStatusProcessing, ImportBatchStatusFailed, true},
		{ImportBatchStatusPending, ImportBatchStatusCompleted, false},
		{ImportBatchStatusCompleted, ImportBatchStatusProcessing, false},
		{ImportBatchStatusFailed, ImportBatchStatusProcessing, false},
		{ImportBatchStatusCompleted, ImportBatchStatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestImportBatchStatusTerminal(t *testing.T) {
	t.Parallel()

	if ImportBatchStatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
	if ImportBatchStatusProcessing.IsTerminal() {
		t.Fatal("processing must not be terminal")
	}
	if !ImportBatchStatusCompleted.IsTerminal() {
		t.Fatal("completed must be terminal")
	}
	if !ImportBatchStatusFailed.IsTerminal() {
		t.Fatal("failed must be terminal")
	}
	if ImportBatchStatus("bogus").IsTerminal() {
		t.Fatal("unknown status must not report terminal")
	}
}

func TestParseImportBatchStatus(t *testing.T) {
	t.Parallel()

	status, err := ParseImportBatchStatus("processing")
	if err != nil {
		t.Fatalf("ParseImportBatchStatus: %v", err)
	}
	if status != ImportBatchStatusProcessing {
		t.Fatalf("unexpected status %s", status)
	}

	if _, err := ParseImportBatchStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
