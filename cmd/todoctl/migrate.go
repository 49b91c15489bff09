package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/todo-resolver/internal/database"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the todos table schema",
	}

	for _, dir := range []database.Direction{database.Up, database.Down} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir),
			Short: fmt.Sprintf("Apply every migration %s", dir),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := c.build(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				return database.Migrate(cmd.Context(), a.Provider, dir, c.logger)
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			version, dirty, ok, err := database.Version(cmd.Context(), a.Provider)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(c.out, "no migrations applied")
				return nil
			}
			fmt.Fprintf(c.out, "version %d", version)
			if dirty {
				fmt.Fprint(c.out, " (dirty)")
			}
			fmt.Fprintln(c.out)
			return nil
		},
	})
	return cmd
}
