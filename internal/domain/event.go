package domain

import "time"

// MessageEvent is the wire shape pushed to live subscribers.
type MessageEvent struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	ReceiverID     string    `json:"receiver_id,omitempty"`
	SenderID       string    `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	SenderEmail    string    `json:"sender_email"`
	Content        string    `json:"content"`
	MessageType    string    `json:"message_type"`
	Timestamp      time.Time `json:"timestamp"`
}
