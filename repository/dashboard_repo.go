package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/membervault/api/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (r *repo) MemberCountsByStatus(ctx context.Context) (map[domain.MemberStatus]int64, error) {
	cursor, err := r.db.Collection(memberCollection).Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate status counts, err: %w", err)
	}

	var rows []struct {
		Status domain.MemberStatus `bson:"_id"`
		Count  int64               `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode status counts, err: %w", err)
	}

	counts := map[domain.MemberStatus]int64{}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repo) MemberCountsByRole(ctx context.Context) ([]domain.RoleCount, error) {
	cursor, err := r.db.Collection(memberCollection).Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{"_id": "$roleID", "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"count": -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate role counts, err: %w", err)
	}

	var counts []domain.RoleCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode role counts, err: %w", err)
	}
	return counts, nil
}

func (r *repo) MemberMonthlyGrowth(ctx context.Context, months int) ([]domain.MonthlyCount, error) {
	cutoff := time.Now().AddDate(0, -months, 0).UnixMilli()
	cursor, err := r.db.Collection(memberCollection).Aggregate(ctx, bson.A{
		bson.M{"$match": bson.M{"createdTime": bson.M{"$gte": cutoff}}},
		bson.M{"$project": bson.M{"created": bson.M{"$toDate": "$createdTime"}}},
		bson.M{"$group": bson.M{
			"_id":   bson.M{"year": bson.M{"$year": "$created"}, "month": bson.M{"$month": "$created"}},
			"count": bson.M{"$sum": 1},
		}},
		bson.M{"$sort": bson.M{"_id.year": 1, "_id.month": 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate monthly growth, err: %w", err)
	}

	var rows []struct {
		Bucket struct {
			Year  int `bson:"year"`
			Month int `bson:"month"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode monthly growth, err: %w", err)
	}

	growth := make([]domain.MonthlyCount, 0, len(rows))
	for _, row := range rows {
		growth = append(growth, domain.MonthlyCount{
			Year:  row.Bucket.Year,
			Month: row.Bucket.Month,
			Count: row.Count,
		})
	}
	return growth, nil
}

func (r *repo) RecentActivity(ctx context.Context, limit int) ([]*domain.ActivityEntry, error) {
	cursor, err := r.db.Collection(auditLogCollection).Aggregate(ctx, bson.A{
		bson.M{"$sort": bson.M{defaultTimestampField: -1}},
		bson.M{"$limit": limit},
		bson.M{"$lookup": bson.M{
			"from":         userCollection,
			"localField":   "userID",
			"foreignField": "_id",
			"as":           "actor",
		}},
		bson.M{"$addFields": bson.M{"userName": bson.M{"$arrayElemAt": bson.A{"$actor.username", 0}}}},
		bson.M{"$project": bson.M{"actor": 0}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate recent activity, err: %w", err)
	}

	var entries []*domain.ActivityEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode recent activity, err: %w", err)
	}
	return entries, nil
}
