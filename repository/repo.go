package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/membervault/api/config"
	"github.com/membervault/api/domain"
	"go.uber.org/fx"

	mongo "go.mongodb.org/mongo-driver/v2/mongo"
	mongooption "go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	userCollection     = "users"
	roleCollection     = "roles"
	memberCollection   = "members"
	auditLogCollection = "activity_logs"

	defaultTimestampField = "timestamp"

	connectTimeout = 10 * time.Second
)

type Params struct {
	fx.In
	MongoConfig config.MongoDBConfig
}

type repo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewRepository(params Params) (domain.Repository, error) {
	mongoOpts := mongooption.Client().ApplyURI(params.MongoConfig.URI())
	client, err := mongo.Connect(mongoOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb, err: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb, err: %w", err)
	}

	return &repo{
		client: client,
		db:     client.Database(params.MongoConfig.Database),
	}, nil
}

func (r *repo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// mapDuplicateKey turns a unique-index violation into the given domain
// sentinel. Uniqueness is enforced by the store, not by check-then-insert.
func mapDuplicateKey(err, sentinel error) error {
	if mongo.IsDuplicateKeyError(err) {
		return sentinel
	}
	return err
}
