package util

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoCleanup drops the named database. Test-only: dropping also removes
// the indexes, so callers re-run migrations before reusing the database.
func MongoCleanup(mongodbClient *mongo.Client, dbName string) error {
	return mongodbClient.Database(dbName).Drop(context.Background())
}
