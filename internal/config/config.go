package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

const (
	SecretBackendAWS   = "aws"
	SecretBackendVault = "vault"
	SecretBackendEnv   = "env"
)

type Config struct {
	ServerPort     string
	AppEnv         string
	AuthDevMode    bool
	LogLevel       string
	AWSRegion      string
	NullOnFailure  bool
	MigrateOnStart bool
	Secret         SecretConfig
	DB             DBConfig
	Cognito        CognitoConfig
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks the settings every entry point needs.
func (c Config) Validate() error {
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if c.DB.ConnectionLimit < 1 {
		return fmt.Errorf("invalid DB_CONNECTION_LIMIT %d: must be at least 1", c.DB.ConnectionLimit)
	}
	switch c.Secret.Backend {
	case SecretBackendAWS:
		if c.Secret.ID == "" {
			return fmt.Errorf("SECRET_ID is required when SECRET_BACKEND is aws")
		}
	case SecretBackendVault:
		if c.Secret.ID == "" {
			return fmt.Errorf("SECRET_ID is required when SECRET_BACKEND is vault")
		}
		if c.Secret.VaultAddr == "" {
			return fmt.Errorf("VAULT_ADDR is required when SECRET_BACKEND is vault")
		}
		if c.Secret.VaultToken == "" {
			return fmt.Errorf("VAULT_TOKEN is required when SECRET_BACKEND is vault")
		}
	case SecretBackendEnv:
		if c.AppEnv != "local" {
			return fmt.Errorf("SECRET_BACKEND=env must not be used in %s environment", c.AppEnv)
		}
	default:
		return fmt.Errorf("invalid SECRET_BACKEND %q: must be one of aws, vault, env", c.Secret.Backend)
	}
	return nil
}

// ValidateServer checks the settings of the local HTTP server on top of Validate.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if c.AuthDevMode && c.AppEnv != "local" {
		return fmt.Errorf("AUTH_DEV_MODE must not be enabled in %s environment", c.AppEnv)
	}
	if !c.AuthDevMode {
		if c.Cognito.UserPoolID == "" {
			return fmt.Errorf("COGNITO_USER_POOL_ID is required when AUTH_DEV_MODE is disabled")
		}
		if c.Cognito.AppClientID == "" {
			return fmt.Errorf("COGNITO_APP_CLIENT_ID is required when AUTH_DEV_MODE is disabled")
		}
	}
	return nil
}

// SecretConfig selects where database credentials come from.
type SecretConfig struct {
	Backend        string
	ID             string
	VaultAddr      string
	VaultToken     string
	VaultMountPath string
}

type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	ConnectionLimit int
}

type CognitoConfig struct {
	Region          string
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
}

func Load() Config {
	return Config{
		ServerPort:     envOrDefault("SERVER_PORT", "8080"),
		AppEnv:         envOrDefault("APP_ENV", "local"),
		AuthDevMode:    envBool("AUTH_DEV_MODE", false),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		AWSRegion:      envOrDefault("AWS_REGION", "ap-northeast-1"),
		NullOnFailure:  envBool("NULL_ON_FAILURE", true),
		MigrateOnStart: envBool("MIGRATE_ON_START", false),
		Secret: SecretConfig{
			Backend:        strings.ToLower(envOrDefault("SECRET_BACKEND", SecretBackendAWS)),
			ID:             os.Getenv("SECRET_ID"),
			VaultAddr:      os.Getenv("VAULT_ADDR"),
			VaultToken:     os.Getenv("VAULT_TOKEN"),
			VaultMountPath: envOrDefault("VAULT_MOUNT_PATH", "secret"),
		},
		DB: DBConfig{
			Host:            envOrDefault("DB_HOST", "localhost"),
			Port:            envOrDefault("DB_PORT", "5432"),
			User:            envOrDefault("DB_USER", "todo"),
			Password:        envOrDefault("DB_PASSWORD", "todo"),
			Name:            envOrDefault("DB_NAME", "todo"),
			SSLMode:         envOrDefault("DB_SSLMODE", "disable"),
			ConnectionLimit: envInt("DB_CONNECTION_LIMIT", 1),
		},
		Cognito: CognitoConfig{
			Region:          envOrDefault("COGNITO_REGION", "ap-northeast-1"),
			UserPoolID:      os.Getenv("COGNITO_USER_POOL_ID"),
			AppClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
		},
	}
}

// LoadDotEnv reads KEY=value files into the process environment for local
// runs. Missing files are skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envBool treats only a case-insensitive "true" as true; empty means defaultVal.
func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return strings.EqualFold(v, "true")
}

// envInt returns 0 for unparsable values so Validate can reject them.
func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
