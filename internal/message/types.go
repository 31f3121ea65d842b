package message

import "time"

// Message is one persisted chat message. SenderAlias is filled at read time
// from the sender's conversation alias so callers never see raw identities
// while disclosure is locked.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderAlias    string    `json:"sender_alias,omitempty"`
	Content        string    `json:"content"`
	Delivered      bool      `json:"delivered"`
	CreatedAt      time.Time `json:"created_at"`
}

// Pagination describes one page of history.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// Page is a chronological slice of a conversation's history. Items are
// ordered oldest first within the page.
type Page struct {
	Items      []Message  `json:"items"`
	Pagination Pagination `json:"pagination"`
}
