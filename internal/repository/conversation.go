package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gamevault/chat-service/internal/domain"
)

var ErrNotFound = errors.New("not found")

type ConversationRepository struct {
	client        *mongo.Client
	conversations *mongo.Collection
	members       *mongo.Collection
}

func NewConversationRepository(client *mongo.Client, db *mongo.Database) *ConversationRepository {
	members := db.Collection(collMembers)
	ix := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("conv_user_idx"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_idx"),
		},
	}
	_, _ = members.Indexes().CreateMany(context.Background(), ix)
	return &ConversationRepository{
		client:        client,
		conversations: db.Collection(collConversations),
		members:       members,
	}
}

// CreateWithOwner inserts the conversation and its owner member record in a
// single transaction, so no reader observes a conversation without an owner.
func (r *ConversationRepository) CreateWithOwner(ctx context.Context, conv *domain.Conversation, owner *domain.Member) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.conversations.InsertOne(sc, conv); err != nil {
			return nil, err
		}
		if _, err := r.members.InsertOne(sc, owner); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (r *ConversationRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := r.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListForUser returns every conversation the user has ever had a member
// record for, active or not, deduplicated by conversation id.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	ids, err := r.members.Distinct(ctx, "conversation_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Conversation{}, nil
	}
	cur, err := r.conversations.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*domain.Conversation{}
	for cur.Next(ctx) {
		var c domain.Conversation
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

// Dissolve marks the conversation dissolved and deactivates every active
// member in the same transaction. Readers never see a dissolved
// conversation with active members.
func (r *ConversationRepository) Dissolve(ctx context.Context, id, by, reason string, at time.Time) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.conversations.UpdateByID(sc, id, bson.M{"$set": bson.M{
			"status":           domain.ConversationDissolved,
			"dissolved_at":     at,
			"dissolved_by":     by,
			"dissolved_reason": reason,
		}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
		_, err = r.members.UpdateMany(sc,
			bson.M{"conversation_id": id, "is_active": true},
			bson.M{"$set": bson.M{
				"is_active":    false,
				"left_at":      at,
				"leave_reason": "conversation dissolved",
			}})
		return nil, err
	})
	return err
}

func (r *ConversationRepository) AddMember(ctx context.Context, m *domain.Member) error {
	_, err := r.members.InsertOne(ctx, m)
	return err
}

// FindMember returns the user's member record for the conversation, active
// or not, or ErrNotFound.
func (r *ConversationRepository) FindMember(ctx context.Context, conversationID, userID string) (*domain.Member, error) {
	var m domain.Member
	err := r.members.FindOne(ctx, bson.M{"conversation_id": conversationID, "user_id": userID}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *ConversationRepository) ActiveMembers(ctx context.Context, conversationID string) ([]*domain.Member, error) {
	cur, err := r.members.Find(ctx,
		bson.M{"conversation_id": conversationID, "is_active": true},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*domain.Member{}
	for cur.Next(ctx) {
		var m domain.Member
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

// DeactivateMember flips a member inactive, recording when and why. Member
// records are never physically deleted.
func (r *ConversationRepository) DeactivateMember(ctx context.Context, conversationID, userID, reason string, at time.Time) error {
	res, err := r.members.UpdateOne(ctx,
		bson.M{"conversation_id": conversationID, "user_id": userID, "is_active": true},
		bson.M{"$set": bson.M{
			"is_active":    false,
			"left_at":      at,
			"leave_reason": reason,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
