package domain

import "time"

type ConversationStatus string

const (
	ConversationActive    ConversationStatus = "active"
	ConversationDissolved ConversationStatus = "dissolved"
)

type Conversation struct {
	ID              string             `bson:"_id" json:"id"`
	Title           string             `bson:"title" json:"title"`
	OwnerID         string             `bson:"owner_id" json:"owner_id"`
	Status          ConversationStatus `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	DissolvedAt     *time.Time         `bson:"dissolved_at,omitempty" json:"dissolved_at,omitempty"`
	DissolvedBy     string             `bson:"dissolved_by,omitempty" json:"dissolved_by,omitempty"`
	DissolvedReason string             `bson:"dissolved_reason,omitempty" json:"dissolved_reason,omitempty"`
}

func (c *Conversation) IsActive() bool { return c.Status == ConversationActive }

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

// Member is a user's participation record in a conversation. A record is
// never reused: once deactivated it stays, and the same user cannot get a
// second record for the same conversation.
type Member struct {
	ID             string     `bson:"_id" json:"id"`
	ConversationID string     `bson:"conversation_id" json:"conversation_id"`
	UserID         string     `bson:"user_id" json:"user_id"`
	Role           MemberRole `bson:"role" json:"role"`
	IsActive       bool       `bson:"is_active" json:"is_active"`
	JoinedAt       time.Time  `bson:"joined_at" json:"joined_at"`
	LeftAt         *time.Time `bson:"left_at,omitempty" json:"left_at,omitempty"`
	LeaveReason    string     `bson:"leave_reason,omitempty" json:"leave_reason,omitempty"`
}

// MemberView is a member enriched with identity from the user directory.
type MemberView struct {
	UserID   string     `json:"user_id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
}

// ConversationSummary is the list-my-conversations view.
type ConversationSummary struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	OwnerID   string             `json:"owner_id"`
	Status    ConversationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}
