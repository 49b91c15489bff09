package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jaekwang-park/todo-resolver/internal/app"
	"github.com/jaekwang-park/todo-resolver/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("cold start failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := app.NewLogger(os.Stdout, cfg)
	slog.SetDefault(logger)

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := a.MigrateOnStart(ctx, cfg, logger); err != nil {
		return err
	}

	// The handle lives for the whole execution environment; the runtime
	// freezes or kills the process without returning from Start.
	lambda.Start(a.Dispatcher.Resolve)
	return nil
}
