package domain

import "time"

// Attachment stores metadata for an uploaded file referenced by a message.
type Attachment struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Message is a chat entry. TicketID is nil for direct messages between two
// users; ReceiverID is nil for ticket-scoped messages addressed to the
// thread rather than a person. Messages are immutable except the read flag.
type Message struct {
	ID         string
	SenderID   *string
	Sender     *User
	ReceiverID *string
	TicketID   *string
	Content    string
	Attachment *Attachment
	Read       bool
	CreatedAt  time.Time
}

// System reports whether the message was produced by the service itself.
func (m *Message) System() bool {
	return m.SenderID == nil
}
