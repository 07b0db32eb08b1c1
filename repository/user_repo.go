package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/membervault/api/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (r *repo) CreateUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}

	now := time.Now().UnixMilli()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if user.CreatedTime == 0 {
		user.CreatedTime = now
	}
	user.UpdatedTime = now

	res, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return mapDuplicateKey(err, domain.ErrDuplicateEmail)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *repo) UpdateUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	if user.ID.IsZero() {
		return errors.New("user id is required")
	}

	user.UpdatedTime = time.Now().UnixMilli()
	res, err := r.db.Collection(userCollection).ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return mapDuplicateKey(err, domain.ErrDuplicateEmail)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) QueryUsers(ctx context.Context, opt *domain.QueryUserOptions) error {
	if opt == nil {
		return domain.ErrNilQueryInput
	}

	filter := bson.M{}
	if len(opt.IDs) > 0 {
		filter["_id"] = bson.M{"$in": opt.IDs}
	}
	if len(opt.UserNames) > 0 {
		filter["username"] = bson.M{"$in": opt.UserNames}
	}
	if len(opt.Emails) > 0 {
		filter["email"] = bson.M{"$in": opt.Emails}
	}
	if opt.LoginName != "" {
		filter["$or"] = bson.A{
			bson.M{"username": opt.LoginName},
			bson.M{"email": opt.LoginName},
		}
	}

	cursor, err := r.db.Collection(userCollection).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("find users, err: %w", err)
	}

	var result []*domain.User
	if err := cursor.All(ctx, &result); err != nil {
		return fmt.Errorf("decode users, err: %w", err)
	}
	opt.Result = result
	return nil
}

func (r *repo) CountUsers(ctx context.Context) (int64, error) {
	return r.db.Collection(userCollection).CountDocuments(ctx, bson.M{})
}
