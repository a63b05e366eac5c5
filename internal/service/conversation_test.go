package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/chat-service/internal/apperr"
	"github.com/gamevault/chat-service/internal/domain"
)

func newConversationFixture() (*ConversationService, *memConversationStore, *memLifecycle) {
	store := newMemConversationStore()
	users := newMemUserDirectory(
		&domain.UserInfo{ID: "alice", Username: "alice", Email: "alice@example.com"},
		&domain.UserInfo{ID: "bob", Username: "bob", Email: "bob@example.com"},
		&domain.UserInfo{ID: "carol", Username: "carol", Email: "carol@example.com"},
	)
	lifecycle := &memLifecycle{}
	return NewConversationService(store, users, lifecycle), store, lifecycle
}

func TestCreateMakesOwnerAnActiveMember(t *testing.T) {
	svc, store, lifecycle := newConversationFixture()

	conv, err := svc.Create(context.Background(), "raid night", "alice")
	require.NoError(t, err)
	assert.Equal(t, "raid night", conv.Title)
	assert.Equal(t, "alice", conv.OwnerID)
	assert.Equal(t, domain.ConversationActive, conv.Status)

	m, err := store.FindMember(context.Background(), conv.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, m.Role)
	assert.True(t, m.IsActive)
	assert.Equal(t, []string{"created:" + conv.ID}, lifecycle.events)
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	svc, _, _ := newConversationFixture()

	_, err := svc.Create(context.Background(), "   ", "alice")
	assert.Equal(t, apperr.KindParams, apperr.KindOf(err))

	_, err = svc.Create(context.Background(), "raid night", "")
	assert.Equal(t, apperr.KindParams, apperr.KindOf(err))
}

func TestDissolveOwnerOnly(t *testing.T) {
	svc, store, _ := newConversationFixture()
	conv, err := svc.Create(context.Background(), "raid night", "alice")
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), conv.ID, "bob")
	require.NoError(t, err)

	err = svc.Dissolve(context.Background(), conv.ID, "bob")
	assert.Equal(t, apperr.KindNoAuth, apperr.KindOf(err))

	got, err := store.Get(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive())
}

func TestDissolveDeactivatesEveryMember(t *testing.T) {
	svc, store, lifecycle := newConversationFixture()
	conv, err := svc.Create(context.Background(), "raid night", "alice")
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), conv.ID, "bob")
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), conv.ID, "carol")
	require.NoError(t, err)

	require.NoError(t, svc.Dissolve(context.Background(), conv.ID, "alice"))

	got, err := store.Get(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConversationDissolved, got.Status)
	require.NotNil(t, got.DissolvedAt)

	active, err := store.ActiveMembers(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Contains(t, lifecycle.events, "dissolved:"+conv.ID)

	// terminal: dissolving again is an invalid transition
	err = svc.Dissolve(context.Background(), conv.ID, "alice")
	assert.Equal(t, apperr.KindOperation, apperr.KindOf(err))
}

func TestDissolveUnknownConversation(t *testing.T) {
	svc, _, _ := newConversationFixture()
	err := svc.Dissolve(context.Background(), "nope", "alice")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAddMemberBlocksAnyPriorRecord(t *testing.T) {
	svc, _, _ := newConversationFixture()
	conv, err := svc.Create(context.Background(), "raid night", "alice")
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), conv.ID, "bob")
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), conv.ID, "bob")
	assert.Equal(t, apperr.KindOperation, apperr.KindOf(err))

	// leaving does not open the door again
	require.NoError(t, svc.RemoveMember(context.Background(), conv.ID, "alice", "bob"))
	_, err = svc.AddMember(context.Background(), conv.ID, "bob")
	assert.Equal(t, apperr.KindOperation, apperr.KindOf(err))
}

func TestAddMemberToDissolvedConversation(t *testing.T) {
	svc, _, _ := newConversationFixture()
	conv, err := svc.Create(context.Background(), "raid night", "alice")
	require.NoError(t, err)
	require.NoError(t, svc.Dissolve(context.Background(), conv.ID, "alice"))

	_, err = svc.AddMember(context.Background(), conv.ID, "bob")
	assert.Equal(t, apperr.KindOperation, apperr.KindOf(err))
}

func TestRemoveMemberOwnerOnly(t *testing.T) {
	svc, store, _ := newConversationFixture()
	conv, err := svc.Create(context.Background(), "raid night", "alice")
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), conv.ID, "bob")
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), conv.ID, "carol")
	require.NoError(t, err)

	err = svc.RemoveMember(context.Background(), conv.ID, "bob", "carol")
	assert.Equal(t, apperr.KindNoAuth, apperr.KindOf(err))

	require.NoError(t, svc.RemoveMember(context.Background(), conv.ID, "alice", "carol"))
	m, err := store.FindMember(context.Background(), conv.ID, "carol")
	require.NoError(t, err)
	assert.False(t, m.IsActive)
	assert.Equal(t, "removed by owner", m.LeaveReason)

	err = svc.RemoveMember(context.Background(), conv.ID, "alice", "nobody")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestMembersRequiresActiveMembership(t *testing.T) {
	svc, _, _ := newConversationFixture()
	conv, err := svc.Create(context.Background(), "raid night", "alice")
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), conv.ID, "bob")
	require.NoError(t, err)

	_, err = svc.Members(context.Background(), conv.ID, "carol")
	assert.Equal(t, apperr.KindNoAuth, apperr.KindOf(err))

	views, err := svc.Members(context.Background(), conv.ID, "bob")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "alice", views[0].Username)
	assert.Equal(t, domain.RoleOwner, views[0].Role)
}

func TestMembersDegradesToSentinelIdentity(t *testing.T) {
	svc, store, _ := newConversationFixture()
	conv, err := svc.Create(context.Background(), "raid night", "alice")
	require.NoError(t, err)
	// ghost has a member record but no directory entry
	_, err = svc.AddMember(context.Background(), conv.ID, "ghost")
	require.NoError(t, err)
	_, err = store.FindMember(context.Background(), conv.ID, "ghost")
	require.NoError(t, err)

	views, err := svc.Members(context.Background(), conv.ID, "alice")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, domain.UnknownUsername, views[1].Username)
	assert.Equal(t, domain.UnknownEmail, views[1].Email)
}

func TestListForUser(t *testing.T) {
	svc, _, _ := newConversationFixture()

	list, err := svc.ListForUser(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, list)

	c1, err := svc.Create(context.Background(), "raid night", "alice")
	require.NoError(t, err)
	c2, err := svc.Create(context.Background(), "trade talk", "bob")
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), c2.ID, "alice")
	require.NoError(t, err)

	list, err = svc.ListForUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)

	// membership history persists through dissolution
	require.NoError(t, svc.Dissolve(context.Background(), c1.ID, "alice"))
	list, err = svc.ListForUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestIsActiveMember(t *testing.T) {
	svc, _, _ := newConversationFixture()
	conv, err := svc.Create(context.Background(), "raid night", "alice")
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), conv.ID, "bob")
	require.NoError(t, err)

	ok, err := svc.IsActiveMember(context.Background(), conv.ID, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.RemoveMember(context.Background(), conv.ID, "alice", "bob"))
	ok, err = svc.IsActiveMember(context.Background(), conv.ID, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsActiveMember(context.Background(), conv.ID, "carol")
	require.NoError(t, err)
	assert.False(t, ok)
}
