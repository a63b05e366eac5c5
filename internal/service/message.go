package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gamevault/chat-service/internal/apperr"
	"github.com/gamevault/chat-service/internal/domain"
)

const defaultMessageType = "text"

type MessagingService struct {
	conversations *ConversationService
	store         MessageStore
	cache         MessageCache
	users         UserDirectory
	friends       FriendshipDirectory
	notifier      Notifier
}

func NewMessagingService(
	conversations *ConversationService,
	store MessageStore,
	cache MessageCache,
	users UserDirectory,
	friends FriendshipDirectory,
	notifier Notifier,
) *MessagingService {
	return &MessagingService{
		conversations: conversations,
		store:         store,
		cache:         cache,
		users:         users,
		friends:       friends,
		notifier:      notifier,
	}
}

// Send appends a group message to the durable log, then updates the cache
// and notifies subscribers. Persistence is the only step that can fail the
// call; cache and broadcast run strictly afterwards, best-effort.
func (s *MessagingService) Send(ctx context.Context, conversationID, content, messageType, senderID string) (*domain.MessageView, error) {
	if _, err := s.conversations.requireActiveConversationMember(ctx, conversationID, senderID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Params("message content is empty")
	}
	if messageType == "" {
		messageType = defaultMessageType
	}

	m := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		ChatType:       domain.ChatGroup,
		MessageType:    messageType,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Save(ctx, m); err != nil {
		return nil, err
	}

	if err := s.cache.Push(ctx, m); err != nil {
		log.Warn().Err(err).Str("conversation", conversationID).Msg("cache message")
	}

	sender := s.lookupUser(ctx, senderID)
	if s.notifier != nil {
		s.notifier.MessageSent(ctx, m, sender)
	}
	return s.view(m, sender), nil
}

// SendPrivate appends a private message. The receiver must exist and must
// be an active friend of the sender; private traffic skips the cache.
func (s *MessagingService) SendPrivate(ctx context.Context, receiverID, content, messageType, senderID string) (*domain.MessageView, error) {
	exists, err := s.users.UserExists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user not found")
	}
	ok, err := s.friends.IsActiveFriend(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NoAuth("not friends with this user")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Params("message content is empty")
	}
	if messageType == "" {
		messageType = defaultMessageType
	}

	m := &domain.Message{
		ReceiverID:  receiverID,
		SenderID:    senderID,
		Content:     content,
		ChatType:    domain.ChatPrivate,
		MessageType: messageType,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Save(ctx, m); err != nil {
		return nil, err
	}

	sender := s.lookupUser(ctx, senderID)
	if s.notifier != nil {
		s.notifier.MessageSent(ctx, m, sender)
	}
	return s.view(m, sender), nil
}

// History returns one page of a conversation's log in chronological order.
// Page zero is served from the recency window when the window holds a full
// page; everything else reads the durable log, and a page-zero store read
// re-seeds the window on the way out.
func (s *MessagingService) History(ctx context.Context, conversationID, requesterID string, page, size int) ([]*domain.MessageView, error) {
	if _, err := s.conversations.requireActiveConversationMember(ctx, conversationID, requesterID); err != nil {
		return nil, err
	}
	if page < 0 || size <= 0 {
		return nil, apperr.Params("invalid page or size")
	}

	if page == 0 {
		cached, err := s.cache.Recent(ctx, conversationID, size)
		if err != nil {
			log.Warn().Err(err).Str("conversation", conversationID).Msg("cache read, falling back to store")
		} else if len(cached) >= size {
			return s.views(ctx, reverse(cached)), nil
		}
	}

	msgs, err := s.store.ConversationPage(ctx, conversationID, page, size)
	if err != nil {
		return nil, err
	}
	if page == 0 && len(msgs) > 0 {
		// write-through: msgs are newest first, the window's native order
		if err := s.cache.Seed(ctx, conversationID, msgs); err != nil {
			log.Warn().Err(err).Str("conversation", conversationID).Msg("cache seed")
		}
	}
	return s.views(ctx, reverse(msgs)), nil
}

// PrivateHistory returns one page of the private log between the caller and
// a friend, chronological. No cache layer is involved.
func (s *MessagingService) PrivateHistory(ctx context.Context, userID, friendID string, page, size int) ([]*domain.MessageView, error) {
	ok, err := s.friends.IsActiveFriend(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NoAuth("not friends with this user")
	}
	if page < 0 || size <= 0 {
		return nil, apperr.Params("invalid page or size")
	}
	msgs, err := s.store.PairPage(ctx, userID, friendID, page, size)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reverse(msgs)), nil
}

func (s *MessagingService) lookupUser(ctx context.Context, id string) *domain.UserInfo {
	info, err := s.users.GetUser(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("user", id).Msg("identity lookup failed")
		return domain.UnknownUser(id)
	}
	return info
}

func (s *MessagingService) view(m *domain.Message, sender *domain.UserInfo) *domain.MessageView {
	return &domain.MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		ReceiverID:     m.ReceiverID,
		SenderID:       m.SenderID,
		SenderUsername: sender.Username,
		SenderEmail:    sender.Email,
		Content:        m.Content,
		MessageType:    m.MessageType,
		CreatedAt:      m.CreatedAt,
	}
}

func (s *MessagingService) views(ctx context.Context, msgs []*domain.Message) []*domain.MessageView {
	senders := make(map[string]*domain.UserInfo)
	out := make([]*domain.MessageView, 0, len(msgs))
	for _, m := range msgs {
		info, ok := senders[m.SenderID]
		if !ok {
			info = s.lookupUser(ctx, m.SenderID)
			senders[m.SenderID] = info
		}
		out = append(out, s.view(m, info))
	}
	return out
}

// reverse flips a newest-first slice into chronological order.
func reverse(msgs []*domain.Message) []*domain.Message {
	out := make([]*domain.Message, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}
