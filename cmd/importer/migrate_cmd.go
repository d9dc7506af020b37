package main

import (
	"flowdata/internal/database"
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}

			db, err := database.Open(cfg)
			if err != nil {
				return withCode(exitDB, err)
			}
			defer db.Close()

			applied, err := database.Migrate(cmd.Context(), db, cfg.DBDriver)
			if err != nil {
				return withCode(exitDB, err)
			}
			logger.WithField("applied", applied).Info("Migrations complete")
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
			return nil
		},
	}
}
