package service

import (
	"context"
	"time"

	"github.com/gamevault/chat-service/internal/domain"
)

// ConversationStore is the durable conversation + member surface.
type ConversationStore interface {
	CreateWithOwner(ctx context.Context, conv *domain.Conversation, owner *domain.Member) error
	Get(ctx context.Context, id string) (*domain.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error)
	Dissolve(ctx context.Context, id, by, reason string, at time.Time) error
	AddMember(ctx context.Context, m *domain.Member) error
	FindMember(ctx context.Context, conversationID, userID string) (*domain.Member, error)
	ActiveMembers(ctx context.Context, conversationID string) ([]*domain.Member, error)
	DeactivateMember(ctx context.Context, conversationID, userID, reason string, at time.Time) error
}

// MessageStore is the durable append-only message log.
type MessageStore interface {
	Save(ctx context.Context, m *domain.Message) error
	ConversationPage(ctx context.Context, conversationID string, page, size int) ([]*domain.Message, error)
	PairPage(ctx context.Context, userID, friendID string, page, size int) ([]*domain.Message, error)
}

// MessageCache is the bounded per-conversation recency window. Purely an
// optimization: its failure or absence must never block a read.
type MessageCache interface {
	Recent(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error)
	Push(ctx context.Context, m *domain.Message) error
	Seed(ctx context.Context, conversationID string, messages []*domain.Message) error
}

// UserDirectory resolves user identity; lookups that miss return the
// sentinel identity rather than an error.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*domain.UserInfo, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// FriendshipDirectory answers the directional active-friendship check.
type FriendshipDirectory interface {
	IsActiveFriend(ctx context.Context, userID, friendID string) (bool, error)
}

// Notifier receives messages after they are durably persisted. It must
// never fail the send: implementations log and swallow their own errors.
type Notifier interface {
	MessageSent(ctx context.Context, m *domain.Message, sender *domain.UserInfo)
}

// LifecycleNotifier announces conversation lifecycle changes, best-effort.
type LifecycleNotifier interface {
	ConversationCreated(id, title, ownerID string)
	ConversationDissolved(id, by, reason string)
	MemberAdded(conversationID, userID string)
	MemberRemoved(conversationID, userID string)
}
