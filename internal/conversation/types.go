package conversation

import "time"

// Gate states. A conversation whose unsupervised message budget is exhausted
// suspends itself until staff re-approve it; parties never hold an unbounded
// open channel.
const (
	GateOpen      = "open"
	GateSuspended = "suspended-pending-admin"
	GateClosed    = "closed"
)

// Disclosure states. While locked, participants see each other only through
// role-scoped aliases.
const (
	DisclosureLocked   = "locked"
	DisclosureUnlocked = "unlocked"
)

// Conversation is a bounded real-time channel between mediated parties.
type Conversation struct {
	ID                string        `json:"id"`
	RequestID         string        `json:"request_id,omitempty"`
	DisclosureState   string        `json:"disclosure_state"`
	GateState         string        `json:"gate_state"`
	UnsupervisedCount int32         `json:"unsupervised_count"`
	MessageBudget     int32         `json:"message_budget"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Participants      []Participant `json:"participants,omitempty"`
}

// Participant is one side of a conversation, identified by its alias.
// DisplayName is filled only once the disclosure gate is unlocked.
type Participant struct {
	AccountID   string    `json:"account_id"`
	Alias       string    `json:"alias"`
	DisplayName string    `json:"display_name,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

// ParticipantIDs returns the account IDs of all participants.
func (c Conversation) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.AccountID)
	}
	return ids
}
