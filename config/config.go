package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// SecretValue is a string that never prints its contents.
type SecretValue string

func (s SecretValue) String() string {
	return "*******"
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	// Env is "development" or "production"; stack traces in error
	// responses are only emitted outside production.
	Env string `mapstructure:"env"`
}

func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type MongoDBConfig struct {
	Database string      `mapstructure:"database"`
	User     string      `mapstructure:"user"`
	Password SecretValue `mapstructure:"password"`
	Port     string      `mapstructure:"port"`
	Host     string      `mapstructure:"host"`
}

func (c MongoDBConfig) URI() string {
	return fmt.Sprintf("mongodb://%s:%s@%s:%s", c.User, string(c.Password), c.Host, c.Port)
}

// MigrateURI includes the database path, as required by golang-migrate.
func (c MongoDBConfig) MigrateURI() string {
	return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin", c.User, string(c.Password), c.Host, c.Port, c.Database)
}

type KeyConfig struct {
	RsaPrivateKeyPem string `mapstructure:"rsa_private_key_pem"`
}

type AuthConfig struct {
	// TokenTTLHours defaults to 168 (7 days).
	TokenTTLHours int `mapstructure:"token_ttl_hours"`
}

type AccountConfig struct {
	AdminUserName string      `mapstructure:"admin_username"`
	AdminEmail    string      `mapstructure:"admin_email"`
	AdminPassword SecretValue `mapstructure:"admin_password"`
}

type UploadConfig struct {
	Dir string `mapstructure:"dir"`
}

type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Key     KeyConfig     `mapstructure:"key"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Account AccountConfig `mapstructure:"account"`
	Upload  UploadConfig  `mapstructure:"upload"`
}

var appCfg *AppConfig

func GetConfig() *AppConfig {
	return appCfg
}

func InitAppConfig(configName string, configPath string) (AppConfig, error) {
	var cfg AppConfig
	if configPath != "" {
		viper.AddConfigPath(configPath)
	}
	if configName == "" {
		configName = "app_config"
	}
	viper.AddConfigPath(GetAbsPath("config"))
	viper.SetConfigName(configName)
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("MEMBERVAULT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	err := viper.ReadInConfig()
	if err != nil {
		return cfg, err
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return cfg, err
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 168
	}
	appCfg = &cfg
	return cfg, nil
}

// GetAbsPath returns the absolute path by joining the given paths with the project root directory
func GetAbsPath(paths ...string) string {
	_, filePath, _, _ := runtime.Caller(1)
	basePath := filepath.Dir(filePath)
	rootPath := filepath.Join(basePath, "..")
	return filepath.Join(rootPath, filepath.Join(paths...))
}
