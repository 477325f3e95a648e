package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchdesk/finch/pkg/finch"
)

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var (
		count      int
		resultType string
		lang       string
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search statuses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params := finch.Params{}
			if count > 0 {
				params["count"] = count
			}

			if resultType != "" {
				params["result_type"] = resultType
			}

			if lang != "" {
				params["lang"] = lang
			}

			result, err := client.Search().Statuses(context.Background(), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to search: %w", err)
			}

			return renderStatuses(result.Statuses)
		},
	}

	cmd.Flags().IntVar(&count, "count", 15, "number of results")
	cmd.Flags().StringVar(&resultType, "result-type", "", "result type (mixed, recent, popular)")
	cmd.Flags().StringVar(&lang, "lang", "", "restrict results to a language")

	return cmd
}
