package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchdesk/finch/pkg/finch"
)

// NewPostCommand creates the post command.
func NewPostCommand() *cobra.Command {
	var (
		replyTo   int64
		mediaFile string
		mediaType string
	)

	cmd := &cobra.Command{
		Use:   "post TEXT",
		Short: "Post a status update",
		Long:  "Post a status update, optionally attaching a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()
			params := finch.Params{}

			if replyTo != 0 {
				params["in_reply_to_status_id"] = replyTo
			}

			if mediaFile != "" {
				result, err := client.Media().UploadChunked(ctx, mediaFile, mediaType)
				if err != nil {
					return fmt.Errorf("failed to upload media: %w", err)
				}

				params["media_ids"] = result.MediaIDString
			}

			status, err := client.Statuses().Update(ctx, args[0], params)
			if err != nil {
				return fmt.Errorf("failed to post status: %w", err)
			}

			return renderStatus(status)
		},
	}

	cmd.Flags().Int64Var(&replyTo, "reply-to", 0, "status ID to reply to")
	cmd.Flags().StringVar(&mediaFile, "media", "", "path to a media file to attach")
	cmd.Flags().StringVar(&mediaType, "media-type", "image/png", "MIME type of the media file")

	return cmd
}
