package events

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// LifecyclePublisher announces conversation lifecycle changes on NATS for
// downstream services (notifications, moderation). Best-effort: a nil
// publisher or a failed publish is never an error for the caller.
type LifecyclePublisher struct {
	nc *nats.Conn
}

func NewLifecyclePublisher(url string) (*LifecyclePublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &LifecyclePublisher{nc: nc}, nil
}

func (p *LifecyclePublisher) Close() {
	if p != nil && p.nc != nil {
		p.nc.Close()
	}
}

type conversationEvent struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title,omitempty"`
	OwnerID        string `json:"owner_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

func (p *LifecyclePublisher) ConversationCreated(id, title, ownerID string) {
	p.publish("conversation.created", conversationEvent{ConversationID: id, Title: title, OwnerID: ownerID})
}

func (p *LifecyclePublisher) ConversationDissolved(id, by, reason string) {
	p.publish("conversation.dissolved", conversationEvent{ConversationID: id, UserID: by, Reason: reason})
}

func (p *LifecyclePublisher) MemberAdded(conversationID, userID string) {
	p.publish("conversation.member.added", conversationEvent{ConversationID: conversationID, UserID: userID})
}

func (p *LifecyclePublisher) MemberRemoved(conversationID, userID string) {
	p.publish("conversation.member.removed", conversationEvent{ConversationID: conversationID, UserID: userID})
}

func (p *LifecyclePublisher) publish(subject string, ev conversationEvent) {
	if p == nil || p.nc == nil {
		return
	}
	b, _ := json.Marshal(ev)
	if err := p.nc.Publish(subject, b); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("publish lifecycle event")
	}
}
