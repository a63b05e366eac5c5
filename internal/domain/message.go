package domain

import "time"

type ChatType string

const (
	ChatGroup   ChatType = "group"
	ChatPrivate ChatType = "private"
)

// Message is an immutable unit of chat content. ConversationID is set iff
// ChatType is group; ReceiverID is set iff ChatType is private.
type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id,omitempty" json:"conversation_id,omitempty"`
	ReceiverID     string    `bson:"receiver_id,omitempty" json:"receiver_id,omitempty"`
	SenderID       string    `bson:"sender_id" json:"sender_id"`
	Content        string    `bson:"content" json:"content"`
	ChatType       ChatType  `bson:"chat_type" json:"chat_type"`
	MessageType    string    `bson:"message_type" json:"message_type"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	IsDeleted      bool      `bson:"is_deleted" json:"is_deleted"`
}

// MessageView is a message enriched with the sender's identity.
type MessageView struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	ReceiverID     string    `json:"receiver_id,omitempty"`
	SenderID       string    `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	SenderEmail    string    `json:"sender_email"`
	Content        string    `json:"content"`
	MessageType    string    `json:"message_type"`
	CreatedAt      time.Time `json:"created_at"`
}
