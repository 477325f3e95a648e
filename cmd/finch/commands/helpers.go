// Package commands implements CLI commands for the Finch platform client.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/finchdesk/finch/pkg/finch"
	"github.com/finchdesk/finch/pkg/finchclient"
)

// Output format constants.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// Static errors.
var (
	ErrNotConfigured = errors.New("no credentials configured, run 'finch configure' first")
)

// CreateClient builds a finch.Client from the resolved configuration.
//
// Credentials come from the config file or FINCH_* environment variables;
// the --app-only flag switches to bearer-token auth.
func CreateClient() (finch.Client, error) {
	creds := finch.Credentials{
		ConsumerKey:       viper.GetString("consumer_key"),
		ConsumerSecret:    viper.GetString("consumer_secret"),
		AccessToken:       viper.GetString("access_token"),
		AccessTokenSecret: viper.GetString("access_token_secret"),
		AppOnlyAuth:       viper.GetBool("app_only_auth"),
		BearerToken:       viper.GetString("bearer_token"),
	}

	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}

	config := &finch.Config{
		Credentials:        creds,
		APIEndpoint:        viper.GetString("api_endpoint"),
		UploadEndpoint:     viper.GetString("upload_endpoint"),
		StreamEndpoint:     viper.GetString("stream_endpoint"),
		UserStreamEndpoint: viper.GetString("user_stream_endpoint"),
		SiteStreamEndpoint: viper.GetString("site_stream_endpoint"),
		TokenURL:           viper.GetString("token_url"),
		Timeout:            viper.GetDuration("timeout"),
		UserAgent:          viper.GetString("user_agent"),
	}

	if pins := viper.GetStringSlice("trusted_cert_fingerprints"); len(pins) > 0 {
		config.TrustedCertFingerprints = pins
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = newCLILogger()
	}

	client, err := finchclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// cliLogger adapts zerolog to the finch.Logger interface.
type cliLogger struct {
	log zerolog.Logger
}

func newCLILogger() *cliLogger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}

	return &cliLogger{
		log: zerolog.New(writer).With().Timestamp().Logger().Level(zerolog.DebugLevel),
	}
}

func (l *cliLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *cliLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *cliLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn().Fields(fields).Msg(msg)
}

func (l *cliLogger) Error(msg string, fields map[string]interface{}) {
	l.log.Error().Fields(fields).Msg(msg)
}

// renderJSON writes v to stdout as indented JSON.
func renderJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// renderYAML writes v to stdout as YAML.
func renderYAML(v interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer func() { _ = encoder.Close() }()

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// renderStatuses prints a list of statuses in the selected output format.
func renderStatuses(statuses []finch.Status) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return renderJSON(statuses)
	case OutputFormatYAML:
		return renderYAML(statuses)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Author", "Created", "Text")

		for _, status := range statuses {
			author := ""
			if status.User != nil {
				author = "@" + status.User.ScreenName
			}

			_ = table.Append(status.IDStr, author, status.CreatedAt, truncateText(status.Text, 80))
		}

		_ = table.Render()

		return nil
	}
}

// renderStatus prints a single status in the selected output format.
func renderStatus(status *finch.Status) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return renderJSON(status)
	case OutputFormatYAML:
		return renderYAML(status)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", status.IDStr)

		if status.User != nil {
			_ = table.Append("Author", "@"+status.User.ScreenName)
		}

		_ = table.Append("Created", status.CreatedAt)
		_ = table.Append("Text", status.Text)
		_ = table.Append("Retweets", fmt.Sprintf("%d", status.RetweetCount))
		_ = table.Append("Favorites", fmt.Sprintf("%d", status.FavoriteCount))

		if status.Lang != "" {
			_ = table.Append("Language", status.Lang)
		}

		_ = table.Render()

		return nil
	}
}

// renderUsers prints a list of users in the selected output format.
func renderUsers(users []finch.User) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return renderJSON(users)
	case OutputFormatYAML:
		return renderYAML(users)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Screen Name", "Name", "Followers", "Statuses", "Verified")

		for _, user := range users {
			_ = table.Append("@"+user.ScreenName, user.Name,
				fmt.Sprintf("%d", user.FollowersCount),
				fmt.Sprintf("%d", user.StatusesCount),
				fmt.Sprintf("%t", user.Verified))
		}

		_ = table.Render()

		return nil
	}
}

func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	return text[:limit-3] + "..."
}
