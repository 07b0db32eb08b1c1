package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/membervault/api/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongooption "go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// memberSortFields maps API sort keys to stored field names. Unknown keys
// fall back to creation time.
var memberSortFields = map[string]string{
	"createdAt":   "createdTime",
	"updatedAt":   "updatedTime",
	"firstName":   "firstName",
	"lastName":    "lastName",
	"email":       "email",
	"status":      "status",
	"dateOfBirth": "dateOfBirth",
}

func (r *repo) CreateMember(ctx context.Context, member *domain.Member) error {
	if member == nil {
		return errors.New("nil member")
	}

	now := time.Now().UnixMilli()
	if member.ID.IsZero() {
		member.ID = bson.NewObjectID()
	}
	if member.CreatedTime == 0 {
		member.CreatedTime = now
	}
	member.UpdatedTime = now

	res, err := r.db.Collection(memberCollection).InsertOne(ctx, member)
	if err != nil {
		return mapDuplicateKey(err, domain.ErrDuplicateEmail)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		member.ID = oid
	}
	return nil
}

func (r *repo) UpdateMember(ctx context.Context, member *domain.Member) error {
	if member == nil {
		return errors.New("nil member")
	}
	if member.ID.IsZero() {
		return errors.New("member id is required")
	}

	member.UpdatedTime = time.Now().UnixMilli()
	res, err := r.db.Collection(memberCollection).ReplaceOne(ctx, bson.M{"_id": member.ID}, member)
	if err != nil {
		return mapDuplicateKey(err, domain.ErrDuplicateEmail)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) DeleteMember(ctx context.Context, memberID bson.ObjectID) error {
	res, err := r.db.Collection(memberCollection).DeleteOne(ctx, bson.M{"_id": memberID})
	if err != nil {
		return fmt.Errorf("delete member, err: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) QueryMembers(ctx context.Context, opt *domain.QueryMemberOptions) error {
	if opt == nil {
		return domain.ErrNilQueryInput
	}

	filter := bson.M{}
	if len(opt.IDs) > 0 {
		filter["_id"] = bson.M{"$in": opt.IDs}
	}
	if len(opt.Emails) > 0 {
		filter["email"] = bson.M{"$in": opt.Emails}
	}

	cursor, err := r.db.Collection(memberCollection).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("find members, err: %w", err)
	}

	var result []*domain.Member
	if err := cursor.All(ctx, &result); err != nil {
		return fmt.Errorf("decode members, err: %w", err)
	}
	opt.Result = result
	return nil
}

func (r *repo) ListMembers(ctx context.Context, opt *domain.ListMemberOptions) error {
	if opt == nil {
		return domain.ErrNilQueryInput
	}
	if opt.Page <= 0 {
		opt.Page = defaultPage
	}
	if opt.Limit <= 0 {
		opt.Limit = defaultLimit
	}
	if opt.Limit > maxLimit {
		opt.Limit = maxLimit
	}

	filter := bson.M{}
	if opt.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(opt.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"firstName": pattern},
			bson.M{"lastName": pattern},
			bson.M{"email": pattern},
			bson.M{"phone": pattern},
		}
	}
	if opt.Status != "" {
		filter["status"] = opt.Status
	}
	if !opt.RoleID.IsZero() {
		filter["roleID"] = opt.RoleID
	}

	coll := r.db.Collection(memberCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("count members, err: %w", err)
	}

	sortField, ok := memberSortFields[opt.SortBy]
	if !ok {
		sortField = "createdTime"
		opt.SortDesc = true
	}
	direction := 1
	if opt.SortDesc {
		direction = -1
	}

	findOpts := mongooption.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}}).
		SetSkip(int64((opt.Page - 1) * opt.Limit)).
		SetLimit(int64(opt.Limit))

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return fmt.Errorf("find members, err: %w", err)
	}

	var result []*domain.Member
	if err := cursor.All(ctx, &result); err != nil {
		return fmt.Errorf("decode members, err: %w", err)
	}

	opt.Result = result
	opt.Total = total
	opt.Pages = int((total + int64(opt.Limit) - 1) / int64(opt.Limit))
	return nil
}
