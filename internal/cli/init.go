package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/larkerhq/larker/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with an example config",
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
		return nil
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}

	fmt.Printf("Created %s, fill in your credentials.\n", configPath)
	return nil
}

const exampleConfig = `# larker configuration

twitter:
  # Credentials may be given literally or via environment variables;
  # the environment wins when both are set.
  consumer_key_env: TWITTER_CONSUMER_KEY
  consumer_secret_env: TWITTER_CONSUMER_SECRET
  access_token_env: TWITTER_ACCESS_TOKEN
  access_secret_env: TWITTER_ACCESS_SECRET

storage:
  path: .larker/larker.db
  subdir: twitter-files
  prefix: tweets

defaults:
  limit: 100
  lang: en

logger:
  level: info
`
