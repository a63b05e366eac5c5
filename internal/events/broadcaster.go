package events

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/gamevault/chat-service/internal/domain"
)

// LocalSink is the in-process delivery surface (the websocket hub).
type LocalSink interface {
	BroadcastToConversation(conversationID string, payload []byte)
	SendToUser(userID string, payload []byte)
}

// BusPublisher carries events to hubs on other instances.
type BusPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Broadcaster turns persisted messages into push events. It runs strictly
// after the durable write; every failure here is logged and swallowed so it
// can never change the outcome of the send that triggered it.
type Broadcaster struct {
	local LocalSink
	bus   BusPublisher
}

func NewBroadcaster(local LocalSink, bus BusPublisher) *Broadcaster {
	return &Broadcaster{local: local, bus: bus}
}

// MessageSent publishes one persisted message. Group messages go to the
// conversation topic; private messages go to both the receiver's and the
// sender's user topics so every open session of either party sees the echo.
func (b *Broadcaster) MessageSent(ctx context.Context, m *domain.Message, sender *domain.UserInfo) {
	ev := domain.MessageEvent{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		ReceiverID:     m.ReceiverID,
		SenderID:       m.SenderID,
		SenderUsername: sender.Username,
		SenderEmail:    sender.Email,
		Content:        m.Content,
		MessageType:    m.MessageType,
		Timestamp:      m.CreatedAt,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("message", m.ID).Msg("encode push event")
		return
	}

	if m.ChatType == domain.ChatPrivate {
		b.local.SendToUser(m.ReceiverID, payload)
		b.local.SendToUser(m.SenderID, payload)
		b.publish(ctx, "user:"+m.ReceiverID, payload)
		b.publish(ctx, "user:"+m.SenderID, payload)
		return
	}
	b.local.BroadcastToConversation(m.ConversationID, payload)
	b.publish(ctx, "conv:"+m.ConversationID, payload)
}

func (b *Broadcaster) publish(ctx context.Context, key string, payload []byte) {
	if b.bus == nil {
		return
	}
	if err := b.bus.Publish(ctx, key, payload); err != nil {
		log.Error().Err(err).Str("key", key).Msg("publish push event")
	}
}
