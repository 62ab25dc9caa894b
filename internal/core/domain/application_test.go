package domain

import "testing"

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"Applied", "Shortlisted", "Selected", "Rejected"} {
		if !ValidStatus(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "applied", "Hired", "SELECTED"} {
		if ValidStatus(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestCanTransitionTo_Permissive(t *testing.T) {
	statuses := []ApplicationStatus{StatusApplied, StatusShortlisted, StatusSelected, StatusRejected}
	for _, from := range statuses {
		for _, to := range statuses {
			if !from.CanTransitionTo(to, false) {
				t.Fatalf("expected %s -> %s to be allowed without terminal lock", from, to)
			}
		}
	}
}

func TestCanTransitionTo_TerminalLock(t *testing.T) {
	if StatusSelected.CanTransitionTo(StatusShortlisted, true) {
		t.Fatalf("Selected must be final when terminal statuses are locked")
	}
	if StatusRejected.CanTransitionTo(StatusApplied, true) {
		t.Fatalf("Rejected must be final when terminal statuses are locked")
	}
	if !StatusShortlisted.CanTransitionTo(StatusSelected, true) {
		t.Fatalf("non-terminal transitions must stay allowed under the lock")
	}
}

func TestCanTransitionTo_RejectsUnknownTarget(t *testing.T) {
	if StatusApplied.CanTransitionTo(ApplicationStatus("Hired"), false) {
		t.Fatalf("unknown target status must be refused")
	}
}
