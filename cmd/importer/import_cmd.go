package main

import (
	"context"
	"flowdata/internal/config"
	"flowdata/internal/database"
	"flowdata/internal/service"
	"flowdata/internal/storage"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type importOptions struct {
	dryRun      bool
	verbose     bool
	migrate     bool
	projectName string
}

func newImportCmd(g *globalOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <workbook.xlsx | s3://bucket/key>",
		Short: "Import a workbook into a new project",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return withCode(exitUsage, fmt.Errorf("import expects exactly one workbook path, got %d", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			if opts.projectName == "" {
				opts.projectName = cfg.ImportProjectName
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), cfg, logger, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse and import everything, then roll back")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Log every detected entity and created link")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Apply pending schema migrations before importing")
	cmd.Flags().StringVar(&opts.projectName, "project-name", "", "Name of the project created by the import (default IMPORT_PROJECT_NAME)")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, cfg *config.Config, logger *logrus.Logger, path string, opts importOptions) error {
	if storage.IsS3URI(path) {
		client, err := storage.NewS3Client(ctx, cfg)
		if err != nil {
			return withCode(exitUsage, err)
		}
		local, cleanup, err := storage.NewWorkbooks(client, cfg.UploadPath).Fetch(ctx, path)
		if err != nil {
			return withCode(exitUsage, err)
		}
		defer cleanup()
		path = local
	}
	if _, err := os.Stat(path); err != nil {
		return withCode(exitUsage, fmt.Errorf("workbook %s: %w", path, err))
	}

	db, err := database.Open(cfg)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer db.Close()

	if opts.migrate {
		if _, err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
			return withCode(exitDB, err)
		}
	}

	importer := service.NewImporter(db, logger)
	report, err := importer.ImportFile(ctx, path, service.ImportOptions{
		DryRun:      opts.dryRun,
		Verbose:     opts.verbose,
		ProjectName: opts.projectName,
	})
	if err != nil {
		if service.IsWorkbookError(err) {
			return withCode(exitValidation, err)
		}
		if service.IsOpenError(err) {
			return withCode(exitUsage, err)
		}
		return withCode(exitDB, err)
	}

	if opts.dryRun {
		fmt.Fprintln(out, "Dry-run complete (rolling back).")
		fmt.Fprintf(out, "Import complete. run=%s sheets=%d\n", report.RunID, len(report.Sheets))
		return nil
	}
	fmt.Fprintf(out, "Import complete. run=%s project=%d sheets=%d\n", report.RunID, report.ProjectID, len(report.Sheets))
	return nil
}
