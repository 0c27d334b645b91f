// Command doorlock inspects the credential and database state of a door lock
// device from a workstation.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jun/smartdoorlock/internal/app"
	"github.com/jun/smartdoorlock/internal/config"
	"github.com/jun/smartdoorlock/internal/logging"
	"github.com/jun/smartdoorlock/internal/token"
	"github.com/spf13/cobra"
)

var logLevel string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "doorlock",
	Short: "Door lock credential and database tool",
	Long:  `Inspect the door lock's database credential and read, write or watch
database paths with it.

Settings come from .env, the YAML file named by DOORLOCK_CONFIG and the
environment. Secrets resolve from SSM Parameter Store, or from the
environment when DEV_MODE=true.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads settings and configures logging to stderr, keeping
// stdout for command output.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logging.Setup(cfg.LogLevel, os.Stderr)
	return cfg, nil
}

// startServices builds the services and starts the auth manager. Token
// transitions are printed to the command output when cb is set.
func startServices(ctx context.Context, cb token.Callback) (*app.Services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	svc, err := app.NewServices(ctx, cfg, cb)
	if err != nil {
		return nil, err
	}
	if err := svc.Auth.Start(ctx); err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return svc, nil
}
