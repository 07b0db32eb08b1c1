package app

import (
	"github.com/membervault/api/config"
	"github.com/membervault/api/repository"
	"github.com/membervault/api/rest"
	"github.com/membervault/api/service"
	"go.uber.org/fx"
)

func ConfigModule(cfg config.AppConfig) fx.Option {
	return fx.Options(
		fx.Provide(func() config.AppConfig {
			return cfg
		}),
		fx.Provide(func(appCfg config.AppConfig) config.MongoDBConfig {
			return appCfg.MongoDB
		}),
		fx.Provide(func(appCfg config.AppConfig) config.ServerConfig {
			return appCfg.Server
		}),
		fx.Provide(func(appCfg config.AppConfig) config.KeyConfig {
			return appCfg.Key
		}),
		fx.Provide(func(appCfg config.AppConfig) config.AuthConfig {
			return appCfg.Auth
		}),
		fx.Provide(func(appCfg config.AppConfig) config.AccountConfig {
			return appCfg.Account
		}),
		fx.Provide(func(appCfg config.AppConfig) config.UploadConfig {
			return appCfg.Upload
		}),
	)
}

// RepoModule provides the repository layer, return domain.Repository
func RepoModule(cfg config.AppConfig) fx.Option {
	return fx.Options(
		ConfigModule(cfg),
		fx.Provide(repository.NewRepository),
	)
}

// ServiceModule provides the service layer, return domain.Service
func ServiceModule(cfg config.AppConfig) fx.Option {
	return fx.Options(
		RepoModule(cfg),
		fx.Provide(service.NewService),
	)
}

// HandlerModule provides the REST handler, return *rest.Handler
func HandlerModule(cfg config.AppConfig) fx.Option {
	return fx.Options(
		ServiceModule(cfg),
		fx.Provide(rest.NewHandler),
	)
}
