package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finchdesk/finch/pkg/finch"
)

// NewStreamCommand creates the stream command.
func NewStreamCommand() *cobra.Command {
	var track string

	cmd := &cobra.Command{
		Use:   "stream [PATH]",
		Short: "Consume a live stream",
		Long: `Open a streaming connection and print events as JSON lines until
interrupted. PATH defaults to statuses/filter; "user" and "site" select
the dedicated stream hosts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			path := "statuses/filter"
			if len(args) == 1 {
				path = args[0]
			}

			params := finch.Params{}
			if track != "" {
				params["track"] = track
			}

			handle := client.Stream(path, params)
			defer handle.Stop()

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

			return consumeStream(handle, interrupt)
		},
	}

	cmd.Flags().StringVar(&track, "track", "", "comma-separated keywords to track")

	return cmd
}

func consumeStream(handle finch.StreamHandle, interrupt <-chan os.Signal) error {
	encoder := json.NewEncoder(os.Stdout)
	messages := handle.Messages()
	errs := handle.Errs()

	for {
		select {
		case <-interrupt:
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			if err := encoder.Encode(msg); err != nil {
				return fmt.Errorf("failed to write event: %w", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil

				continue
			}

			if finch.IsTrust(err) || finch.IsAuthResolution(err) {
				return fmt.Errorf("stream failed: %w", err)
			}

			fmt.Fprintln(os.Stderr, "stream error:", err)
		}
	}
}
