// Package realtime provides room-scoped event fan-out and per-identity throttling.
package realtime

import "encoding/json"

// Shared staff rooms. Every other room is an account ID.
const (
	RoomAdmin      = "admin"
	RoomSuperadmin = "superadmin"
)

// Type identifies the event category delivered to subscribers.
type Type string

const (
	TypeMessageCreated     Type = "messageCreated"
	TypeStatusChanged      Type = "statusChanged"
	TypeApprovalNeeded     Type = "approvalNeeded"
	TypeFormSubmitted      Type = "formSubmitted"
	TypeChannelSuspended   Type = "channelSuspended"
	TypeChannelReopened    Type = "channelReopened"
	TypeDisclosureUnlocked Type = "disclosureUnlocked"
)

// Event is the payload fanned out to participant and staff rooms. Data must
// never carry a real identity for a conversation whose disclosure gate is
// locked; senders appear as aliases only.
type Event struct {
	Type           Type            `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	RequestID      string          `json:"request_id,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

// staffTypes are mirrored into the admin room in addition to participant rooms.
var staffTypes = map[Type]bool{
	TypeApprovalNeeded:   true,
	TypeFormSubmitted:    true,
	TypeChannelSuspended: true,
}
