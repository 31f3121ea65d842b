package mediation

// actorClass is a capability bitmask for one edge.
type actorClass uint8

const (
	byStaff actorClass = 1 << iota
	byRequester
	byTarget
)

type edge struct {
	to      string
	allowed actorClass
}

// workflowEdges is the transition graph for interest and communication
// requests. Every edge out of a reviewing state needs the staff capability;
// the counterparty response and the post-revision resubmit are the only moves
// the parties make themselves.
var workflowEdges = map[string][]edge{
	StatusSubmitted: {
		{StatusAdminReviewing, byStaff},
		{StatusForwardedToCounterpart, byStaff},
		{StatusClosedRejected, byStaff},
	},
	StatusAdminReviewing: {
		{StatusForwardedToCounterpart, byStaff},
		{StatusClosedRejected, byStaff},
	},
	StatusForwardedToCounterpart: {
		{StatusCounterpartyResponded, byTarget},
		{StatusClosedRejected, byStaff | byTarget},
	},
	StatusCounterpartyResponded: {
		{StatusAdminReviewingResponse, byStaff},
		{StatusClosedAccepted, byStaff},
		{StatusClosedRejected, byStaff},
	},
	StatusAdminReviewingResponse: {
		{StatusApprovedDisclosed, byStaff},
		{StatusRevisionRequested, byStaff},
		{StatusClosedRejected, byStaff},
	},
	StatusRevisionRequested: {
		{StatusSubmitted, byRequester},
	},
	StatusApprovedDisclosed: {
		{StatusClosedAccepted, byStaff},
		{StatusClosedRejected, byStaff},
	},
}

// callEdges is the short scheduling path for call requests.
var callEdges = map[string][]edge{
	StatusPending: {
		{StatusApproved, byStaff},
		{StatusClosedRejected, byStaff},
	},
	StatusApproved: {
		{StatusScheduled, byStaff},
	},
	StatusScheduled: {
		{StatusCompleted, byStaff},
	},
}

// IsTerminal reports whether a status has no outgoing edges in either graph.
func IsTerminal(status string) bool {
	switch status {
	case StatusClosedAccepted, StatusClosedRejected, StatusCompleted:
		return true
	}
	return false
}

// InitialStatus returns the entry status for a kind, or "" for unknown kinds.
func InitialStatus(kind string) string {
	switch kind {
	case KindInterest, KindCommunication:
		return StatusSubmitted
	case KindCall:
		return StatusPending
	}
	return ""
}

func edgesFor(kind string) map[string][]edge {
	if kind == KindCall {
		return callEdges
	}
	return workflowEdges
}

// CanTransition checks the edge and the actor's capability for it. The first
// return value is false when the edge does not exist at all; the second is
// false when the edge exists but this actor may not take it.
func CanTransition(kind, from, to string, class actorClass) (edgeExists, actorAllowed bool) {
	for _, e := range edgesFor(kind)[from] {
		if e.to != to {
			continue
		}
		return true, class&e.allowed != 0
	}
	return false, false
}

// classify maps an actor onto its capability classes for a given request.
func classify(actor Actor, req Request) actorClass {
	var class actorClass
	if actor.Staff {
		class |= byStaff
	}
	if actor.ID == req.RequesterID {
		class |= byRequester
	}
	if actor.ID == req.TargetID {
		class |= byTarget
	}
	return class
}
