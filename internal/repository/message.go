package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gamevault/chat-service/internal/domain"
)

type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	coll := db.Collection(collMessages)
	ix := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("conv_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("pair_created_idx"),
		},
	}
	_, _ = coll.Indexes().CreateMany(context.Background(), ix)
	return &MessageRepository{coll: coll}
}

// Save appends a message to the log. The store assigns the id: ObjectID hex
// is time-prefixed, so ids increase with insertion order.
func (r *MessageRepository) Save(ctx context.Context, m *domain.Message) error {
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	filter := bson.M{"_id": m.ID}
	update := bson.M{"$setOnInsert": m}
	opts := options.Update().SetUpsert(true)
	_, err := r.coll.UpdateOne(ctx, filter, update, opts)
	return err
}

// ConversationPage returns one page of a conversation's log, newest first.
func (r *MessageRepository) ConversationPage(ctx context.Context, conversationID string, page, size int) ([]*domain.Message, error) {
	filter := bson.M{"conversation_id": conversationID, "is_deleted": false}
	return r.find(ctx, filter, page, size)
}

// PairPage returns one page of the private log between two users, both
// directions, newest first.
func (r *MessageRepository) PairPage(ctx context.Context, userID, friendID string, page, size int) ([]*domain.Message, error) {
	filter := bson.M{
		"chat_type":  domain.ChatPrivate,
		"is_deleted": false,
		"$or": bson.A{
			bson.M{"sender_id": userID, "receiver_id": friendID},
			bson.M{"sender_id": friendID, "receiver_id": userID},
		},
	}
	return r.find(ctx, filter, page, size)
}

func (r *MessageRepository) find(ctx context.Context, filter bson.M, page, size int) ([]*domain.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page) * int64(size)).
		SetLimit(int64(size))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*domain.Message{}
	for cur.Next(ctx) {
		var m domain.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}
