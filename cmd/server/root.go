package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/scaffold-api/internal/config"
	"github.com/phrazzld/scaffold-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "server",
		Short:         "scaffold-api server and maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a config file (default ./config.yaml if present)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newServeCmd(opts),
		newWorkerCmd(opts),
		newMigrateCmd(opts),
		newInitDataCmd(opts),
	)
	return root
}

// loadAppConfig loads configuration and sets up the process logger.
func loadAppConfig(opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadWithOptions(config.Options{
		EnvFile:    opts.envFile,
		ConfigFile: opts.configFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"cache_driver", cfg.Cache.Driver,
		"task_broker", cfg.Tasks.Broker,
		"email_enabled", cfg.Email.Enabled())
	return cfg, l, nil
}
