package main

import (
	"context"
	"flowdata/internal/config"
	"flowdata/internal/utils"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	logLevel  string
	logFormat string
	dbDriver  string
	dbPath    string
}

func newRootCmd() *cobra.Command {
	var g globalOptions

	cmd := &cobra.Command{
		Use:           "importer",
		Short:         "Material and energy flow workbook importer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: json or text (overrides LOG_FORMAT)")
	cmd.PersistentFlags().StringVar(&g.dbDriver, "db-driver", "", "Database driver: mysql or sqlite (overrides DB_DRIVER)")
	cmd.PersistentFlags().StringVar(&g.dbPath, "db-path", "", "SQLite database file (overrides DB_PATH)")

	cmd.AddCommand(newImportCmd(&g))
	cmd.AddCommand(newTemplateCmd())
	cmd.AddCommand(newSampleCmd())
	cmd.AddCommand(newMigrateCmd(&g))
	cmd.AddCommand(newEnqueueCmd(&g))
	cmd.AddCommand(newStatusCmd(&g))
	return cmd
}

// load reads the environment and applies the persistent flag overrides.
func (g *globalOptions) load() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, withCode(exitUsage, err)
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		cfg.LogFormat = g.logFormat
	}
	if g.dbPath != "" {
		cfg.DBPath = g.dbPath
		if g.dbDriver == "" {
			cfg.DBDriver = config.DriverSQLite
		}
	}
	if g.dbDriver != "" {
		switch g.dbDriver {
		case config.DriverMySQL, config.DriverSQLite:
			cfg.DBDriver = g.dbDriver
		default:
			return nil, nil, withCode(exitUsage, fmt.Errorf("invalid --db-driver %q", g.dbDriver))
		}
	}
	return cfg, utils.NewLogger(cfg.LogLevel, cfg.LogFormat), nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
