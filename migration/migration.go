package migration

import (
	"context"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/membervault/api/config"
	"github.com/membervault/api/pkg/logger"
)

//go:embed files/*.json
var migrationFiles embed.FS

// RunMongoMigration applies the embedded migrations: unique indexes on
// user/member emails and role names, audit-log indexes, and the seed roles.
func RunMongoMigration(cfg config.MongoDBConfig) error {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURI())
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Logger(context.Background()).Debug().Msg("mongo schema already up to date")
		return nil
	}
	return err
}
