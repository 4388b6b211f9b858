package main

import (
	"fmt"

	"github.com/2beens/fitlife/internal/db"

	"github.com/spf13/cobra"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the embedded SQL migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requirePostgres(); err != nil {
				return err
			}
			if err := db.MigrateUp(opts.dbParams()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requirePostgres(); err != nil {
				return err
			}
			if err := db.MigrateDown(opts.dbParams(), steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(downCmd)

	return cmd
}
