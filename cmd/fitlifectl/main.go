package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/fitlife/internal/config"
	"github.com/2beens/fitlife/internal/db"
	"github.com/2beens/fitlife/internal/logging"

	"github.com/spf13/cobra"
)

var Version = "dev"

type rootOptions struct {
	env        string
	configPath string
	logLevel   string

	cfg *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "fitlifectl",
		Short:         "fitlifectl - admin tasks for the fitlife service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(logging.LoggerSetupParams{
				LogToStdout: true,
				LogLevel:    opts.logLevel,
			})

			cfg, err := config.Load(opts.env, opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.env, "env", "e", "development", "config environment [development | production | dockerdev]")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level")

	rootCmd.AddCommand(migrateCmd(opts))
	rootCmd.AddCommand(seedCmd(opts))
	rootCmd.AddCommand(snapshotCmd(opts))

	return rootCmd
}

func (o *rootOptions) dbParams() db.NewDBPoolParams {
	return db.NewDBPoolParams{
		DBHost:     o.cfg.PostgresHost,
		DBPort:     o.cfg.PostgresPort,
		DBName:     o.cfg.PostgresDBName,
		DBUser:     o.cfg.PostgresUser,
		DBPassword: os.Getenv("FITLIFE_POSTGRES_PASS"),
	}
}

func (o *rootOptions) requirePostgres() error {
	if o.cfg.RowStore != config.RowStorePostgres {
		return fmt.Errorf("env %s uses the %s row store, this command needs postgres", o.env, o.cfg.RowStore)
	}
	return nil
}
