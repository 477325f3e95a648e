package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/finchdesk/finch/internal/constants"
)

// NewConfigureCommand creates the configure command.
func NewConfigureCommand() *cobra.Command {
	var appOnly bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure API credentials",
		Long: `Interactively configure API credentials and store them in
$HOME/.finch/config.yml. Secrets are read without echoing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(appOnly)
		},
	}

	cmd.Flags().BoolVar(&appOnly, "app-only", false, "configure app-only (bearer token) auth")

	return cmd
}

func runConfigure(appOnly bool) error {
	reader := bufio.NewReader(os.Stdin)

	consumerKey, err := promptPlain(reader, "Consumer key")
	if err != nil {
		return err
	}

	consumerSecret, err := promptSecret("Consumer secret")
	if err != nil {
		return err
	}

	settings := map[string]interface{}{
		"consumer_key":    consumerKey,
		"consumer_secret": consumerSecret,
	}

	if appOnly {
		settings["app_only_auth"] = true
	} else {
		accessToken, err := promptPlain(reader, "Access token")
		if err != nil {
			return err
		}

		accessTokenSecret, err := promptSecret("Access token secret")
		if err != nil {
			return err
		}

		settings["access_token"] = accessToken
		settings["access_token_secret"] = accessTokenSecret
	}

	path, err := writeConfigFile(settings)
	if err != nil {
		return err
	}

	fmt.Println("Configuration written to", path)

	return nil
}

func promptPlain(reader *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}

	return strings.TrimSpace(line), nil
}

func promptSecret(label string) (string, error) {
	fmt.Printf("%s: ", label)

	secret, err := term.ReadPassword(syscall.Stdin)

	fmt.Println()

	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}

	return strings.TrimSpace(string(secret)), nil
}

func writeConfigFile(settings map[string]interface{}) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}

	configDir := filepath.Join(home, ".finch")
	if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(configDir, "config.yml")
	if err := os.WriteFile(path, data, constants.ConfigFilePerm); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
