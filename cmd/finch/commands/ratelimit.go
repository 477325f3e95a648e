package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRateLimitCommand creates the rate-limit command.
func NewRateLimitCommand() *cobra.Command {
	var resources []string

	cmd := &cobra.Command{
		Use:   "rate-limit",
		Short: "Show rate limit windows",
		Long:  "Show the current rate limit windows for the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			status, err := client.RateLimitStatus(context.Background(), resources)
			if err != nil {
				return fmt.Errorf("failed to fetch rate limit status: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return renderJSON(status)
			case OutputFormatYAML:
				return renderYAML(status)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Resource", "Limit", "Remaining", "Resets")

				families := make([]string, 0, len(status.Resources))
				for family := range status.Resources {
					families = append(families, family)
				}

				sort.Strings(families)

				for _, family := range families {
					endpoints := status.Resources[family]

					names := make([]string, 0, len(endpoints))
					for name := range endpoints {
						names = append(names, name)
					}

					sort.Strings(names)

					for _, name := range names {
						entry := endpoints[name]
						reset := time.Unix(entry.Reset, 0).Format(time.RFC3339)

						_ = table.Append(name,
							fmt.Sprintf("%d", entry.Limit),
							fmt.Sprintf("%d", entry.Remaining),
							reset)
					}
				}

				_ = table.Render()

				return nil
			}
		},
	}

	cmd.Flags().StringSliceVar(&resources, "resources", nil, "resource families to include (default all)")

	return cmd
}
