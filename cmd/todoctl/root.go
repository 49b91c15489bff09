package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/todo-resolver/internal/app"
	"github.com/jaekwang-park/todo-resolver/internal/config"
)

// cli carries the streams and lazily built stack shared by subcommands.
type cli struct {
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
	cfg    config.Config
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}
	var envFile string

	root := &cobra.Command{
		Use:           "todoctl",
		Short:         "Operate the todo resolver",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := config.LoadDotEnv(envFile); err != nil {
					return err
				}
			}
			c.cfg = config.Load()
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			c.logger = app.NewLogger(errOut, c.cfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "KEY=value file supplying unset variables; missing files are ignored")
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.AddCommand(newMigrateCmd(c), newInvokeCmd(c), newOpsCmd(c))
	return root
}

func (c *cli) build(ctx context.Context) (*app.App, error) {
	return app.Build(ctx, c.cfg, c.logger)
}
