package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/config"
	"github.com/Konsultn-Engineering/namedb/engine"
	"github.com/Konsultn-Engineering/namedb/logging"
)

// app is the state shared by every command once the root pre-run has loaded it.
type app struct {
	configPath string
	envFile    string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "namedb",
		Short: "Run named-parameter SQL against a database",
		Long: `namedb compiles SQL written with :name parameters, resolves stored procedure
metadata and runs queries, streaming rows through a cursor.

Settings come from namedb.yaml (when present) and NAMEDB_* environment variables.
A .env file is loaded first.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "namedb.yaml", "Path to config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before the config")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		newCompileCmd(a),
		newDescribeCmd(a),
		newQueryCmd(a),
		newPingCmd(a),
	)
	return root
}

func (a *app) load(*cobra.Command, []string) error {
	if a.envFile != "" {
		if _, err := os.Stat(a.envFile); err == nil {
			if err := godotenv.Load(a.envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", a.envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

func (a *app) open(ctx context.Context) (*engine.Engine, error) {
	e, err := engine.Open(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return e, nil
}
