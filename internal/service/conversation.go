package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gamevault/chat-service/internal/apperr"
	"github.com/gamevault/chat-service/internal/domain"
	"github.com/gamevault/chat-service/internal/repository"
)

const (
	dissolveReason     = "dissolved by owner"
	removeMemberReason = "removed by owner"
)

type ConversationService struct {
	store     ConversationStore
	users     UserDirectory
	lifecycle LifecycleNotifier
}

func NewConversationService(store ConversationStore, users UserDirectory, lifecycle LifecycleNotifier) *ConversationService {
	return &ConversationService{store: store, users: users, lifecycle: lifecycle}
}

// Create makes an active conversation together with its owner member
// record. Exactly one active owner exists from the first readable instant.
func (s *ConversationService) Create(ctx context.Context, title, ownerID string) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Params("conversation title is required")
	}
	if ownerID == "" {
		return nil, apperr.Params("owner id is required")
	}

	now := time.Now().UTC()
	conv := &domain.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		OwnerID:   ownerID,
		Status:    domain.ConversationActive,
		CreatedAt: now,
	}
	owner := &domain.Member{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		UserID:         ownerID,
		Role:           domain.RoleOwner,
		IsActive:       true,
		JoinedAt:       now,
	}
	if err := s.store.CreateWithOwner(ctx, conv, owner); err != nil {
		return nil, err
	}
	if s.lifecycle != nil {
		s.lifecycle.ConversationCreated(conv.ID, conv.Title, conv.OwnerID)
	}
	return conv, nil
}

// ListForUser returns every conversation the user has ever belonged to.
// A blank user id is an empty list, not an error.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]*domain.ConversationSummary, error) {
	if userID == "" {
		return []*domain.ConversationSummary{}, nil
	}
	convs, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.ConversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, &domain.ConversationSummary{
			ID:        c.ID,
			Title:     c.Title,
			OwnerID:   c.OwnerID,
			Status:    c.Status,
			CreatedAt: c.CreatedAt,
		})
	}
	return out, nil
}

// Dissolve is the one bulk transition in the system: the conversation goes
// terminal and every active member is deactivated atomically.
func (s *ConversationService) Dissolve(ctx context.Context, conversationID, requesterID string) error {
	conv, err := s.getConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsActive() {
		return apperr.Operation("conversation already dissolved")
	}
	if conv.OwnerID != requesterID {
		return apperr.NoAuth("only the owner can dissolve a conversation")
	}
	if err := s.store.Dissolve(ctx, conversationID, requesterID, dissolveReason, time.Now().UTC()); err != nil {
		return err
	}
	if s.lifecycle != nil {
		s.lifecycle.ConversationDissolved(conversationID, requesterID, dissolveReason)
	}
	return nil
}

// Members lists active members enriched with directory identity. Identity
// failures degrade to the sentinel; the member list itself never fails for
// a directory outage.
func (s *ConversationService) Members(ctx context.Context, conversationID, requesterID string) ([]*domain.MemberView, error) {
	if _, err := s.requireActiveConversationMember(ctx, conversationID, requesterID); err != nil {
		return nil, err
	}
	members, err := s.store.ActiveMembers(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.MemberView, 0, len(members))
	for _, m := range members {
		info, err := s.users.GetUser(ctx, m.UserID)
		if err != nil {
			log.Warn().Err(err).Str("user", m.UserID).Msg("identity lookup failed")
			info = domain.UnknownUser(m.UserID)
		}
		out = append(out, &domain.MemberView{
			UserID:   m.UserID,
			Username: info.Username,
			Email:    info.Email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return out, nil
}

// AddMember enrols a user. Membership records are one-per-user-per-
// conversation for all time: any prior record, active or not, blocks a new
// one, so departed members cannot rejoin.
func (s *ConversationService) AddMember(ctx context.Context, conversationID, userID string) (*domain.Member, error) {
	if conversationID == "" || userID == "" {
		return nil, apperr.Params("conversation id and user id are required")
	}
	conv, err := s.getConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsActive() {
		return nil, apperr.Operation("conversation dissolved")
	}
	if _, err := s.store.FindMember(ctx, conversationID, userID); err == nil {
		return nil, apperr.Operation("already in conversation")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	m := &domain.Member{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		UserID:         userID,
		Role:           domain.RoleMember,
		IsActive:       true,
		JoinedAt:       time.Now().UTC(),
	}
	if err := s.store.AddMember(ctx, m); err != nil {
		return nil, err
	}
	if s.lifecycle != nil {
		s.lifecycle.MemberAdded(conversationID, userID)
	}
	return m, nil
}

// RemoveMember deactivates the target's member record; only the owner may
// do this. The record stays behind with its leave reason.
func (s *ConversationService) RemoveMember(ctx context.Context, conversationID, requesterID, userID string) error {
	if conversationID == "" || userID == "" {
		return apperr.Params("conversation id and user id are required")
	}
	conv, err := s.getConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsActive() {
		return apperr.Operation("conversation dissolved")
	}
	if conv.OwnerID != requesterID {
		return apperr.NoAuth("only the owner can remove members")
	}
	if err := s.store.DeactivateMember(ctx, conversationID, userID, removeMemberReason, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("member not found")
		}
		return err
	}
	if s.lifecycle != nil {
		s.lifecycle.MemberRemoved(conversationID, userID)
	}
	return nil
}

// IsActiveMember reports whether the user currently belongs to the
// conversation. Used by the websocket layer to gate subscriptions.
func (s *ConversationService) IsActiveMember(ctx context.Context, conversationID, userID string) (bool, error) {
	m, err := s.store.FindMember(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.IsActive, nil
}

func (s *ConversationService) getConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	conv, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("conversation not found")
		}
		return nil, err
	}
	return conv, nil
}

// requireActiveConversationMember applies the shared read gates: the
// conversation exists, is active, and the requester is an active member.
func (s *ConversationService) requireActiveConversationMember(ctx context.Context, conversationID, requesterID string) (*domain.Conversation, error) {
	conv, err := s.getConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsActive() {
		return nil, apperr.Operation("conversation dissolved")
	}
	m, err := s.store.FindMember(ctx, conversationID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NoAuth("not a member of this conversation")
		}
		return nil, err
	}
	if !m.IsActive {
		return nil, apperr.NoAuth("not a member of this conversation")
	}
	return conv, nil
}
