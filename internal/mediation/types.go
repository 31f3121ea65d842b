package mediation

import "time"

// Request kinds. Interest and communication requests run the full disclosure
// workflow; call requests follow the short scheduling path.
const (
	KindInterest      = "product-interest"
	KindCommunication = "communication"
	KindCall          = "call"
)

// Workflow statuses for interest and communication requests.
const (
	StatusSubmitted              = "submitted"
	StatusAdminReviewing         = "admin-reviewing"
	StatusForwardedToCounterpart = "forwarded-to-counterparty"
	StatusCounterpartyResponded  = "counterparty-responded"
	StatusAdminReviewingResponse = "admin-reviewing-response"
	StatusApprovedDisclosed      = "approved-disclosed"
	StatusRevisionRequested      = "revision-requested"
	StatusClosedAccepted         = "closed-accepted"
	StatusClosedRejected         = "closed-rejected"
)

// Scheduling statuses for call requests.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
)

// Actor is the authenticated party attempting an operation. Staff actors hold
// the admin capability; everyone else acts as requester or target.
type Actor struct {
	ID    string
	Staff bool
}

// Request is one mediation request moving through the workflow.
type Request struct {
	ID                 string    `json:"id"`
	Kind               string    `json:"kind"`
	RequesterID        string    `json:"requester_id"`
	TargetID           string    `json:"target_id"`
	Payload            string    `json:"payload"`
	AdminEditedPayload string    `json:"admin_edited_payload,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// EffectivePayload is the text the counterparty sees: the admin-edited copy
// when one exists, the requester's original otherwise.
func (r Request) EffectivePayload() string {
	if r.AdminEditedPayload != "" {
		return r.AdminEditedPayload
	}
	return r.Payload
}

// Terminal reports whether the request can move no further.
func (r Request) Terminal() bool {
	return IsTerminal(r.Status)
}

// Event is one audit-trail entry for a request.
type Event struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubmitInput describes a new request.
type SubmitInput struct {
	Kind     string `json:"kind"`
	TargetID string `json:"target_id"`
	Payload  string `json:"payload"`
}

// TransitionInput describes one attempted status move. ExpectedStatus guards
// against concurrent transitions; EditedPayload optionally replaces the copy
// forwarded to the counterparty.
type TransitionInput struct {
	ToStatus       string `json:"to_status"`
	ExpectedStatus string `json:"expected_status"`
	EditedPayload  string `json:"edited_payload,omitempty"`
	Note           string `json:"note,omitempty"`
}
