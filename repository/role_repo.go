package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/membervault/api/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (r *repo) CreateRole(ctx context.Context, role *domain.Role) error {
	if role == nil {
		return errors.New("nil role")
	}

	now := time.Now().UnixMilli()
	if role.ID.IsZero() {
		role.ID = bson.NewObjectID()
	}
	if role.CreatedTime == 0 {
		role.CreatedTime = now
	}
	role.UpdatedTime = now

	res, err := r.db.Collection(roleCollection).InsertOne(ctx, role)
	if err != nil {
		return mapDuplicateKey(err, domain.ErrDuplicateName)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		role.ID = oid
	}
	return nil
}

func (r *repo) UpdateRole(ctx context.Context, role *domain.Role) error {
	if role == nil {
		return errors.New("nil role")
	}
	if role.ID.IsZero() {
		return errors.New("role id is required")
	}

	role.UpdatedTime = time.Now().UnixMilli()
	res, err := r.db.Collection(roleCollection).ReplaceOne(ctx, bson.M{"_id": role.ID}, role)
	if err != nil {
		return mapDuplicateKey(err, domain.ErrDuplicateName)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) DeleteRole(ctx context.Context, roleID bson.ObjectID) error {
	res, err := r.db.Collection(roleCollection).DeleteOne(ctx, bson.M{"_id": roleID})
	if err != nil {
		return fmt.Errorf("delete role, err: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) QueryRoles(ctx context.Context, opt *domain.QueryRoleOptions) error {
	if opt == nil {
		return domain.ErrNilQueryInput
	}

	filter := bson.M{}
	if len(opt.IDs) > 0 {
		filter["_id"] = bson.M{"$in": opt.IDs}
	}
	if len(opt.Names) > 0 {
		filter["name"] = bson.M{"$in": opt.Names}
	}

	cursor, err := r.db.Collection(roleCollection).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("find roles, err: %w", err)
	}

	var result []*domain.Role
	if err := cursor.All(ctx, &result); err != nil {
		return fmt.Errorf("decode roles, err: %w", err)
	}
	opt.Result = result
	return nil
}
