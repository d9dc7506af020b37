package main

import (
	"encoding/json"
	"errors"
	"flowdata/internal/database"
	"flowdata/internal/worker"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <run-code>",
		Short: "Show the status of a queued import",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return withCode(exitUsage, fmt.Errorf("status expects exactly one run code, got %d", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.load()
			if err != nil {
				return err
			}

			rdb, err := database.NewRedis(cmd.Context(), cfg)
			if err != nil {
				return withCode(exitQueue, err)
			}
			defer rdb.Close()

			status, err := worker.NewRedisStatusStore(rdb, cfg.StatusTTL).Get(cmd.Context(), args[0])
			if errors.Is(err, worker.ErrStatusNotFound) {
				return withCode(exitUsage, fmt.Errorf("no status for run %s", args[0]))
			}
			if err != nil {
				return withCode(exitQueue, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		},
	}
}
