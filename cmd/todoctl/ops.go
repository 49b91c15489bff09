package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/todo-resolver/internal/dispatch"
)

func newOpsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the field names the dispatcher routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, op := range dispatch.Operations() {
				fmt.Fprintln(c.out, op)
			}
			return nil
		},
	}
}
