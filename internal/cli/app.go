// Package cli implements the orderbot command tree. Commands load the
// configuration, wire the application and delegate to adapters.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/example/orderbot/internal/config"
	"github.com/example/orderbot/internal/wire"
)

// ConfigFlag is the persistent flag naming the YAML config file.
const ConfigFlag = "config"

// configPath resolves the config file: --config, then ORDERBOT_CONFIG, then
// the default location if it exists. Empty means defaults and environment only.
func configPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString(ConfigFlag); path != "" {
		return path
	}
	if path := os.Getenv("ORDERBOT_CONFIG"); path != "" {
		return path
	}
	if def := config.DefaultConfigPath(); fileExists(def) {
		return def
	}
	return ""
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.LoadConfig(configPath(cmd))
}

func openApp(cmd *cobra.Command) (*wire.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return wire.New(cfg)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
