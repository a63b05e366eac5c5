package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gamevault/chat-service/internal/domain"
	"github.com/gamevault/chat-service/internal/repository"
)

// In-memory doubles for the stores and directories. They implement the
// same contracts as the Mongo-backed versions, including ErrNotFound.

type memConversationStore struct {
	convs   map[string]*domain.Conversation
	members []*domain.Member
}

func newMemConversationStore() *memConversationStore {
	return &memConversationStore{convs: make(map[string]*domain.Conversation)}
}

func (s *memConversationStore) CreateWithOwner(_ context.Context, conv *domain.Conversation, owner *domain.Member) error {
	s.convs[conv.ID] = conv
	s.members = append(s.members, owner)
	return nil
}

func (s *memConversationStore) Get(_ context.Context, id string) (*domain.Conversation, error) {
	c, ok := s.convs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memConversationStore) ListForUser(_ context.Context, userID string) ([]*domain.Conversation, error) {
	seen := make(map[string]bool)
	out := []*domain.Conversation{}
	for _, m := range s.members {
		if m.UserID != userID || seen[m.ConversationID] {
			continue
		}
		seen[m.ConversationID] = true
		if c, ok := s.convs[m.ConversationID]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memConversationStore) Dissolve(_ context.Context, id, by, reason string, at time.Time) error {
	c, ok := s.convs[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = domain.ConversationDissolved
	c.DissolvedAt = &at
	c.DissolvedBy = by
	c.DissolvedReason = reason
	for _, m := range s.members {
		if m.ConversationID == id && m.IsActive {
			m.IsActive = false
			m.LeftAt = &at
			m.LeaveReason = "conversation dissolved"
		}
	}
	return nil
}

func (s *memConversationStore) AddMember(_ context.Context, m *domain.Member) error {
	s.members = append(s.members, m)
	return nil
}

func (s *memConversationStore) FindMember(_ context.Context, conversationID, userID string) (*domain.Member, error) {
	for _, m := range s.members {
		if m.ConversationID == conversationID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memConversationStore) ActiveMembers(_ context.Context, conversationID string) ([]*domain.Member, error) {
	out := []*domain.Member{}
	for _, m := range s.members {
		if m.ConversationID == conversationID && m.IsActive {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memConversationStore) DeactivateMember(_ context.Context, conversationID, userID, reason string, at time.Time) error {
	for _, m := range s.members {
		if m.ConversationID == conversationID && m.UserID == userID && m.IsActive {
			m.IsActive = false
			m.LeftAt = &at
			m.LeaveReason = reason
			return nil
		}
	}
	return repository.ErrNotFound
}

type memMessageStore struct {
	msgs    []*domain.Message
	nextID  int
	queries int
}

func (s *memMessageStore) Save(_ context.Context, m *domain.Message) error {
	if m.ID == "" {
		s.nextID++
		m.ID = fmt.Sprintf("msg-%04d", s.nextID)
	}
	cp := *m
	s.msgs = append(s.msgs, &cp)
	return nil
}

// ConversationPage returns newest first, matching the durable log's sort.
func (s *memMessageStore) ConversationPage(_ context.Context, conversationID string, page, size int) ([]*domain.Message, error) {
	s.queries++
	matched := []*domain.Message{}
	for i := len(s.msgs) - 1; i >= 0; i-- {
		m := s.msgs[i]
		if m.ConversationID == conversationID && m.ChatType == domain.ChatGroup && !m.IsDeleted {
			matched = append(matched, m)
		}
	}
	return slicePage(matched, page, size), nil
}

func (s *memMessageStore) PairPage(_ context.Context, userID, friendID string, page, size int) ([]*domain.Message, error) {
	s.queries++
	matched := []*domain.Message{}
	for i := len(s.msgs) - 1; i >= 0; i-- {
		m := s.msgs[i]
		if m.ChatType != domain.ChatPrivate || m.IsDeleted {
			continue
		}
		if (m.SenderID == userID && m.ReceiverID == friendID) || (m.SenderID == friendID && m.ReceiverID == userID) {
			matched = append(matched, m)
		}
	}
	return slicePage(matched, page, size), nil
}

func slicePage(msgs []*domain.Message, page, size int) []*domain.Message {
	start := page * size
	if start >= len(msgs) {
		return []*domain.Message{}
	}
	end := start + size
	if end > len(msgs) {
		end = len(msgs)
	}
	out := make([]*domain.Message, 0, end-start)
	for _, m := range msgs[start:end] {
		cp := *m
		out = append(out, &cp)
	}
	return out
}

type memCache struct {
	window  map[string][]*domain.Message
	size    int
	failing bool
	pushes  int
	seeds   int
	reads   int
}

func newMemCache(size int) *memCache {
	return &memCache{window: make(map[string][]*domain.Message), size: size}
}

var errCacheDown = fmt.Errorf("cache down")

func (c *memCache) Recent(_ context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	if c.failing {
		return nil, errCacheDown
	}
	c.reads++
	w := c.window[conversationID]
	if limit > len(w) {
		limit = len(w)
	}
	out := make([]*domain.Message, 0, limit)
	for _, m := range w[:limit] {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (c *memCache) Push(_ context.Context, m *domain.Message) error {
	if c.failing {
		return errCacheDown
	}
	c.pushes++
	cp := *m
	w := append([]*domain.Message{&cp}, c.window[m.ConversationID]...)
	if len(w) > c.size {
		w = w[:c.size]
	}
	c.window[m.ConversationID] = w
	return nil
}

func (c *memCache) Seed(_ context.Context, conversationID string, messages []*domain.Message) error {
	if c.failing {
		return errCacheDown
	}
	if len(messages) == 0 {
		return nil
	}
	c.seeds++
	w := make([]*domain.Message, 0, len(messages))
	for _, m := range messages {
		cp := *m
		w = append(w, &cp)
	}
	if len(w) > c.size {
		w = w[:c.size]
	}
	c.window[conversationID] = w
	return nil
}

type memUserDirectory struct {
	users map[string]*domain.UserInfo
}

func newMemUserDirectory(users ...*domain.UserInfo) *memUserDirectory {
	d := &memUserDirectory{users: make(map[string]*domain.UserInfo)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *memUserDirectory) GetUser(_ context.Context, id string) (*domain.UserInfo, error) {
	if u, ok := d.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return domain.UnknownUser(id), nil
}

func (d *memUserDirectory) UserExists(_ context.Context, id string) (bool, error) {
	_, ok := d.users[id]
	return ok, nil
}

type memFriendshipDirectory struct {
	pairs map[string]bool
}

func newMemFriendshipDirectory() *memFriendshipDirectory {
	return &memFriendshipDirectory{pairs: make(map[string]bool)}
}

func (d *memFriendshipDirectory) befriend(a, b string) {
	d.pairs[a+"|"+b] = true
	d.pairs[b+"|"+a] = true
}

func (d *memFriendshipDirectory) IsActiveFriend(_ context.Context, userID, friendID string) (bool, error) {
	return d.pairs[userID+"|"+friendID], nil
}

type recordedNotification struct {
	msg    *domain.Message
	sender *domain.UserInfo
}

type memNotifier struct {
	sent []recordedNotification
}

func (n *memNotifier) MessageSent(_ context.Context, m *domain.Message, sender *domain.UserInfo) {
	n.sent = append(n.sent, recordedNotification{msg: m, sender: sender})
}

type memLifecycle struct {
	events []string
}

func (l *memLifecycle) ConversationCreated(id, _, _ string) {
	l.events = append(l.events, "created:"+id)
}

func (l *memLifecycle) ConversationDissolved(id, _, _ string) {
	l.events = append(l.events, "dissolved:"+id)
}

func (l *memLifecycle) MemberAdded(conversationID, userID string) {
	l.events = append(l.events, "member_added:"+conversationID+":"+userID)
}

func (l *memLifecycle) MemberRemoved(conversationID, userID string) {
	l.events = append(l.events, "member_removed:"+conversationID+":"+userID)
}
