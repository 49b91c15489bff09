package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/todo-resolver/internal/dispatch"
)

func newInvokeCmd(c *cli) *cobra.Command {
	var eventPath string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Resolve one gateway event and print the result as JSON",
		Example: `  todoctl invoke --event create.json
  echo '{"info":{"fieldName":"listTodos"}}' | todoctl invoke --event -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := readEvent(eventPath, c.in)
			if err != nil {
				return err
			}

			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.Dispatcher.Resolve(cmd.Context(), ev)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
	cmd.Flags().StringVarP(&eventPath, "event", "e", "-", `event file, or "-" for stdin`)
	return cmd
}

func readEvent(path string, stdin io.Reader) (dispatch.Event, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return dispatch.Event{}, fmt.Errorf("failed to open event file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var ev dispatch.Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return dispatch.Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if ev.Info.FieldName == "" {
		return dispatch.Event{}, fmt.Errorf("event has no info.fieldName")
	}
	return ev, nil
}
