package mediation

import "testing"

func TestWorkflowHappyPath(t *testing.T) {
	t.Parallel()

	staff := byStaff
	target := byTarget
	path := []struct {
		from, to string
		class    actorClass
	}{
		{StatusSubmitted, StatusAdminReviewing, staff},
		{StatusAdminReviewing, StatusForwardedToCounterpart, staff},
		{StatusForwardedToCounterpart, StatusCounterpartyResponded, target},
		{StatusCounterpartyResponded, StatusAdminReviewingResponse, staff},
		{StatusAdminReviewingResponse, StatusApprovedDisclosed, staff},
		{StatusApprovedDisclosed, StatusClosedAccepted, staff},
	}
	for _, step := range path {
		exists, allowed := CanTransition(KindCommunication, step.from, step.to, step.class)
		if !exists || !allowed {
			t.Fatalf("expected %s -> %s to be allowed (exists=%v allowed=%v)", step.from, step.to, exists, allowed)
		}
	}
}

func TestDirectForwardSkipsReview(t *testing.T) {
	t.Parallel()

	exists, allowed := CanTransition(KindInterest, StatusSubmitted, StatusForwardedToCounterpart, byStaff)
	if !exists || !allowed {
		t.Fatal("expected staff to forward straight from submitted")
	}
}

func TestOnlyTargetMayRespond(t *testing.T) {
	t.Parallel()

	exists, allowed := CanTransition(KindCommunication, StatusForwardedToCounterpart, StatusCounterpartyResponded, byStaff|byRequester)
	if !exists {
		t.Fatal("expected the response edge to exist")
	}
	if allowed {
		t.Fatal("expected only the target to take the response edge")
	}
	if _, allowed := CanTransition(KindCommunication, StatusForwardedToCounterpart, StatusCounterpartyResponded, byTarget); !allowed {
		t.Fatal("expected the target to take the response edge")
	}
}

func TestOnlyRequesterMayResubmit(t *testing.T) {
	t.Parallel()

	if _, allowed := CanTransition(KindCommunication, StatusRevisionRequested, StatusSubmitted, byRequester); !allowed {
		t.Fatal("expected the requester to resubmit after a revision request")
	}
	if _, allowed := CanTransition(KindCommunication, StatusRevisionRequested, StatusSubmitted, byStaff); allowed {
		t.Fatal("did not expect staff to resubmit on the requester's behalf")
	}
}

func TestStaffRequiredToLeaveReviewingStates(t *testing.T) {
	t.Parallel()

	for _, from := range []string{StatusAdminReviewing, StatusAdminReviewingResponse} {
		for _, e := range workflowEdges[from] {
			if e.allowed&byStaff == 0 {
				t.Fatalf("edge %s -> %s must require staff", from, e.to)
			}
			if e.allowed&(byRequester|byTarget) != 0 {
				t.Fatalf("edge %s -> %s must not be open to parties", from, e.to)
			}
		}
	}
}

func TestApprovedDisclosedOnlyReachableFromResponseReview(t *testing.T) {
	t.Parallel()

	for from, edges := range workflowEdges {
		for _, e := range edges {
			if e.to == StatusApprovedDisclosed && from != StatusAdminReviewingResponse {
				t.Fatalf("approved-disclosed reachable from %s", from)
			}
		}
	}
}

func TestTerminalStatesHaveNoEdges(t *testing.T) {
	t.Parallel()

	for _, status := range []string{StatusClosedAccepted, StatusClosedRejected, StatusCompleted} {
		if !IsTerminal(status) {
			t.Fatalf("expected %s to be terminal", status)
		}
		if len(workflowEdges[status]) != 0 || len(callEdges[status]) != 0 {
			t.Fatalf("terminal status %s has outgoing edges", status)
		}
	}
}

func TestCallSchedulingPath(t *testing.T) {
	t.Parallel()

	path := []struct{ from, to string }{
		{StatusPending, StatusApproved},
		{StatusApproved, StatusScheduled},
		{StatusScheduled, StatusCompleted},
	}
	for _, step := range path {
		exists, allowed := CanTransition(KindCall, step.from, step.to, byStaff)
		if !exists || !allowed {
			t.Fatalf("expected staff edge %s -> %s", step.from, step.to)
		}
	}
	if exists, _ := CanTransition(KindCall, StatusPending, StatusScheduled, byStaff); exists {
		t.Fatal("did not expect pending -> scheduled shortcut")
	}
}

func TestUnknownEdgeRejected(t *testing.T) {
	t.Parallel()

	if exists, _ := CanTransition(KindCommunication, StatusSubmitted, StatusApprovedDisclosed, byStaff); exists {
		t.Fatal("did not expect submitted -> approved-disclosed")
	}
}

func TestInitialStatusPerKind(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		KindInterest:      StatusSubmitted,
		KindCommunication: StatusSubmitted,
		KindCall:          StatusPending,
		"unknown":         "",
	}
	for kind, want := range cases {
		if got := InitialStatus(kind); got != want {
			t.Fatalf("InitialStatus(%q) = %q, want %q", kind, got, want)
		}
	}
}

// Kinds are wire values: clients submit them verbatim, so the literals are
// part of the API contract.
func TestKindWireValues(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"product-interest": StatusSubmitted,
		"communication":    StatusSubmitted,
		"call":             StatusPending,
	}
	for kind, want := range cases {
		if got := InitialStatus(kind); got != want {
			t.Fatalf("InitialStatus(%q) = %q, want %q", kind, got, want)
		}
	}
	if got := InitialStatus("interest"); got != "" {
		t.Fatalf("expected bare %q to be rejected as a kind, got initial status %q", "interest", got)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	req := Request{RequesterID: "r", TargetID: "t"}
	if classify(Actor{ID: "r"}, req) != byRequester {
		t.Fatal("expected requester class")
	}
	if classify(Actor{ID: "t"}, req) != byTarget {
		t.Fatal("expected target class")
	}
	if classify(Actor{ID: "x", Staff: true}, req) != byStaff {
		t.Fatal("expected staff class")
	}
	if classify(Actor{ID: "other"}, req) != 0 {
		t.Fatal("expected no class for a stranger")
	}
}
