package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand() *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a media file",
		Long:  "Upload a media file in chunks and print the resulting media ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Media().UploadChunked(context.Background(), args[0], mediaType)
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", args[0], err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return renderJSON(result)
			case OutputFormatYAML:
				return renderYAML(result)
			default:
				fmt.Println("Media ID:", result.MediaIDString)

				return nil
			}
		},
	}

	cmd.Flags().StringVar(&mediaType, "media-type", "image/png", "MIME type of the file")

	return cmd
}
