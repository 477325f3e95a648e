package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchdesk/finch/pkg/finch"
)

// NewTimelineCommand creates the timeline command group.
func NewTimelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Read timelines",
		Long:  "Read the home, mentions, or a user's timeline",
	}

	cmd.AddCommand(newTimelineHomeCommand())
	cmd.AddCommand(newTimelineMentionsCommand())
	cmd.AddCommand(newTimelineUserCommand())

	return cmd
}

func newTimelineHomeCommand() *cobra.Command {
	var (
		count   int
		sinceID int64
		maxID   int64
	)

	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show the home timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params := &finch.TimelineParams{Count: count, SinceID: sinceID, MaxID: maxID}

			statuses, err := client.Statuses().HomeTimeline(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to fetch home timeline: %w", err)
			}

			return renderStatuses(statuses)
		},
	}

	addTimelineFlags(cmd, &count, &sinceID, &maxID)

	return cmd
}

func newTimelineMentionsCommand() *cobra.Command {
	var (
		count   int
		sinceID int64
		maxID   int64
	)

	cmd := &cobra.Command{
		Use:   "mentions",
		Short: "Show the mentions timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params := &finch.TimelineParams{Count: count, SinceID: sinceID, MaxID: maxID}

			statuses, err := client.Statuses().MentionsTimeline(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to fetch mentions timeline: %w", err)
			}

			return renderStatuses(statuses)
		},
	}

	addTimelineFlags(cmd, &count, &sinceID, &maxID)

	return cmd
}

func newTimelineUserCommand() *cobra.Command {
	var (
		count   int
		sinceID int64
		maxID   int64
	)

	cmd := &cobra.Command{
		Use:   "user SCREEN_NAME",
		Short: "Show a user's timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params := &finch.TimelineParams{
				Count:      count,
				SinceID:    sinceID,
				MaxID:      maxID,
				ScreenName: args[0],
			}

			statuses, err := client.Statuses().UserTimeline(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to fetch timeline for %s: %w", args[0], err)
			}

			return renderStatuses(statuses)
		},
	}

	addTimelineFlags(cmd, &count, &sinceID, &maxID)

	return cmd
}

func addTimelineFlags(cmd *cobra.Command, count *int, sinceID, maxID *int64) {
	cmd.Flags().IntVar(count, "count", 20, "number of statuses to fetch")
	cmd.Flags().Int64Var(sinceID, "since-id", 0, "only statuses newer than this ID")
	cmd.Flags().Int64Var(maxID, "max-id", 0, "only statuses up to this ID")
}
