// Package app wires the resolver stack shared by the Lambda, the local
// server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/jaekwang-park/todo-resolver/internal/config"
	"github.com/jaekwang-park/todo-resolver/internal/database"
	"github.com/jaekwang-park/todo-resolver/internal/dispatch"
	"github.com/jaekwang-park/todo-resolver/internal/repository"
	"github.com/jaekwang-park/todo-resolver/internal/secret"
	"github.com/jaekwang-park/todo-resolver/internal/service"
)

type App struct {
	AWS        aws.Config
	Provider   *database.Provider
	Todos      *service.TodoService
	Dispatcher *dispatch.Dispatcher
}

// NewLogger returns the JSON logger every entry point uses.
func NewLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
}

// Build loads AWS configuration and assembles the dispatcher. No secret is
// fetched and no connection is opened until the first operation runs.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return build(cfg, awsCfg, logger)
}

func build(cfg config.Config, awsCfg aws.Config, logger *slog.Logger) (*App, error) {
	source, err := NewSecretSource(cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	provider := database.NewProvider(source, database.Options{
		SSLMode:      cfg.DB.SSLMode,
		MaxOpenConns: cfg.DB.ConnectionLimit,
	}, logger)

	todos := service.NewTodoService(repository.NewHandlerStore(provider), logger)

	d, err := dispatch.NewDispatcher(todos, logger, dispatch.WithNullOnFailure(cfg.NullOnFailure))
	if err != nil {
		return nil, err
	}

	logger.Info("resolver wired",
		"env", cfg.AppEnv,
		"secret_backend", cfg.Secret.Backend,
		"null_on_failure", cfg.NullOnFailure,
		"connection_limit", cfg.DB.ConnectionLimit,
	)

	return &App{
		AWS:        awsCfg,
		Provider:   provider,
		Todos:      todos,
		Dispatcher: d,
	}, nil
}

// NewSecretSource selects the credential backend named by SECRET_BACKEND.
func NewSecretSource(cfg config.Config, awsCfg aws.Config) (secret.Source, error) {
	switch cfg.Secret.Backend {
	case config.SecretBackendAWS:
		return secret.NewAWSSource(secretsmanager.NewFromConfig(awsCfg), cfg.Secret.ID), nil
	case config.SecretBackendVault:
		src, err := secret.NewVaultSource(cfg.Secret.VaultAddr, cfg.Secret.VaultToken, cfg.Secret.VaultMountPath, cfg.Secret.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create vault source: %w", err)
		}
		return src, nil
	case config.SecretBackendEnv:
		return secret.NewStaticSource(secret.Credentials{
			Username: cfg.DB.User,
			Password: cfg.DB.Password,
			Host:     cfg.DB.Host,
			Port:     secret.Port(cfg.DB.Port),
			DBName:   cfg.DB.Name,
		}), nil
	default:
		return nil, fmt.Errorf("invalid SECRET_BACKEND %q", cfg.Secret.Backend)
	}
}

// MigrateOnStart applies pending migrations when MIGRATE_ON_START is set.
func (a *App) MigrateOnStart(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if !cfg.MigrateOnStart {
		return nil
	}
	return database.Migrate(ctx, a.Provider, database.Up, logger)
}

func (a *App) Close() error {
	return a.Provider.Close()
}
