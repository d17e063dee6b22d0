package dto

import (
	"time"

	"github.com/iticket/helpdesk/internal/domain"
)

// SendMessageRequest posts a message into a ticket thread or a direct
// conversation. Exactly one of TicketID and ReceiverID is expected.
type SendMessageRequest struct {
	TicketID   *string            `json:"ticket_id,omitempty"`
	ReceiverID *string            `json:"receiver_id,omitempty"`
	Content    string             `json:"content"`
	Attachment *domain.Attachment `json:"attachment,omitempty"`
}

// MarkReadRequest marks the caller's unread messages in a conversation.
type MarkReadRequest struct {
	TicketID *string `json:"ticket_id,omitempty"`
	PeerID   *string `json:"peer_id,omitempty"`
}

// MessageResponse is the wire form of a chat message.
type MessageResponse struct {
	ID         string             `json:"id"`
	SenderID   *string            `json:"sender_id,omitempty"`
	Sender     *UserResponse      `json:"sender,omitempty"`
	ReceiverID *string            `json:"receiver_id,omitempty"`
	TicketID   *string            `json:"ticket_id,omitempty"`
	Content    string             `json:"content"`
	Attachment *domain.Attachment `json:"attachment,omitempty"`
	System     bool               `json:"system"`
	Read       bool               `json:"read"`
	CreatedAt  time.Time          `json:"created_at"`
}

// NewMessageResponse maps a domain message.
func NewMessageResponse(message *domain.Message) MessageResponse {
	resp := MessageResponse{
		ID:         message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		TicketID:   message.TicketID,
		Content:    message.Content,
		Attachment: message.Attachment,
		System:     message.System(),
		Read:       message.Read,
		CreatedAt:  message.CreatedAt,
	}
	if message.Sender != nil {
		sender := NewUserResponse(message.Sender)
		resp.Sender = &sender
	}
	return resp
}

// NewMessageResponses maps a slice of messages.
func NewMessageResponses(messages []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, NewMessageResponse(&messages[i]))
	}
	return out
}
