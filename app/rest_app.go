package app

import (
	"context"

	"github.com/membervault/api/config"
	"github.com/membervault/api/domain"
	"github.com/membervault/api/migration"
	"github.com/membervault/api/pkg/logger"
	"github.com/membervault/api/rest"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

func NewRestApp(configName string, configDirPath string) (*fx.App, error) {
	cfg, err := config.InitAppConfig(configName, configDirPath)
	if err != nil {
		return nil, err
	}
	logger.InitLogger(cfg.Logging.Level, cfg.Logging.Console)

	app := fx.New(
		HandlerModule(cfg),
		fx.Invoke(migration.RunMongoMigration),
		fx.Invoke(SeedAdminAccount),
		fx.Invoke(StartRestApp),
	)
	return app, nil
}

// SeedAdminAccount makes sure the configured admin account exists before
// the server takes traffic. Migrations are assumed to have seeded the
// built-in roles already.
func SeedAdminAccount(cfg config.AccountConfig, svc domain.Service) error {
	if cfg.AdminUserName == "" {
		return nil
	}
	return svc.CreateAdminUserIfNotExists(context.Background(),
		cfg.AdminUserName, cfg.AdminEmail, string(cfg.AdminPassword))
}

func StartRestApp(lc fx.Lifecycle, cfg config.ServerConfig, handler *rest.Handler) error {
	engine := echo.New()
	engine.HideBanner = true
	handler.SetupRoutes(engine)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			serverHost := cfg.Host
			if serverHost == "" {
				serverHost = ":8080"
			}
			go func() {
				logger.Logger(ctx).Info().Msgf("starting rest server on %s", serverHost)
				if err := engine.Start(serverHost); err != nil {
					logger.Logger(ctx).Fatal().Err(err).Msgf("start rest server fail on %s", serverHost)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Logger(ctx).Info().Msg("shutting down rest server")
			return engine.Shutdown(ctx)
		},
	})

	return nil
}
