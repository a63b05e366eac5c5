package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gamevault/chat-service/internal/domain"
)

// UserDirectory reads the user collection owned by the account service.
// Lookups that miss return the sentinel identity instead of an error.
type UserDirectory struct {
	coll *mongo.Collection
}

func NewUserDirectory(db *mongo.Database) *UserDirectory {
	return &UserDirectory{coll: db.Collection(collUsers)}
}

func (d *UserDirectory) GetUser(ctx context.Context, id string) (*domain.UserInfo, error) {
	var u domain.UserInfo
	if err := d.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return domain.UnknownUser(id), nil
		}
		return nil, err
	}
	return &u, nil
}

// UserExists is the stricter check used before accepting a private message.
func (d *UserDirectory) UserExists(ctx context.Context, id string) (bool, error) {
	err := d.coll.FindOne(ctx, bson.M{"_id": id}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FriendshipDirectory reads the friendship pairs owned by the social
// service. The check is directional: sender towards receiver.
type FriendshipDirectory struct {
	coll *mongo.Collection
}

func NewFriendshipDirectory(db *mongo.Database) *FriendshipDirectory {
	return &FriendshipDirectory{coll: db.Collection(collFriendships)}
}

func (d *FriendshipDirectory) IsActiveFriend(ctx context.Context, userID, friendID string) (bool, error) {
	err := d.coll.FindOne(ctx, bson.M{
		"user_id":   userID,
		"friend_id": friendID,
		"is_active": true,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
