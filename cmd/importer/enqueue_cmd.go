package main

import (
	"context"
	"flowdata/internal/config"
	"flowdata/internal/database"
	"flowdata/internal/models"
	"flowdata/internal/storage"
	"flowdata/internal/worker"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type enqueueOptions struct {
	dryRun      bool
	verbose     bool
	projectName string
	queue       string
	upload      bool
}

func newRunCode() string {
	return "IMPORT-" + strings.ToUpper(uuid.New().String()[:8])
}

func newEnqueueCmd(g *globalOptions) *cobra.Command {
	var opts enqueueOptions

	cmd := &cobra.Command{
		Use:   "enqueue <workbook.xlsx | s3://bucket/key>",
		Short: "Queue a workbook import for the worker",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return withCode(exitUsage, fmt.Errorf("enqueue expects exactly one workbook path, got %d", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}

			runCode := newRunCode()
			path, err := resolveWorkbookRef(cmd.Context(), cfg, args[0], runCode, opts.upload)
			if err != nil {
				return err
			}

			payload := worker.ImportPayload{
				RunCode:     runCode,
				FilePath:    path,
				DryRun:      opts.dryRun,
				Verbose:     opts.verbose,
				ProjectName: opts.projectName,
			}
			task, err := worker.NewImportTask(payload)
			if err != nil {
				return withCode(exitUsage, err)
			}

			client := asynq.NewClient(asynq.RedisClientOpt{
				Addr:     cfg.AsynqRedisAddr,
				Password: cfg.AsynqRedisPassword,
				DB:       cfg.AsynqRedisDB,
			})
			defer client.Close()

			// Best effort: saved before enqueueing so the worker's first update wins.
			if rdb, err := database.NewRedis(cmd.Context(), cfg); err == nil {
				statuses := worker.NewRedisStatusStore(rdb, cfg.StatusTTL)
				_ = statuses.Save(cmd.Context(), &models.ImportStatus{
					RunCode: payload.RunCode,
					Status:  worker.StatusQueued,
					File:    path,
					DryRun:  payload.DryRun,
				})
				rdb.Close()
			}

			info, err := client.EnqueueContext(cmd.Context(), task, asynq.Queue(opts.queue))
			if err != nil {
				return withCode(exitQueue, fmt.Errorf("enqueue %s: %w", payload.RunCode, err))
			}

			logger.WithFields(logrus.Fields{
				"run_code": payload.RunCode,
				"task_id":  info.ID,
				"queue":    info.Queue,
			}).Info("Import queued")
			fmt.Fprintln(cmd.OutOrStdout(), payload.RunCode)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Roll the queued import back after it completes")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Log every detected entity and created link")
	cmd.Flags().StringVar(&opts.projectName, "project-name", "", "Name of the project created by the import")
	cmd.Flags().StringVar(&opts.queue, "queue", "default", "Queue name")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "Upload the workbook to S3_BUCKET so remote workers can read it")
	return cmd
}

// resolveWorkbookRef turns the argument into the reference the worker reads:
// an s3:// uri as given, or an absolute local path, optionally uploaded first.
func resolveWorkbookRef(ctx context.Context, cfg *config.Config, ref, runCode string, upload bool) (string, error) {
	if storage.IsS3URI(ref) {
		if _, _, err := storage.ParseS3URI(ref); err != nil {
			return "", withCode(exitUsage, err)
		}
		return ref, nil
	}

	path, err := filepath.Abs(ref)
	if err != nil {
		return "", withCode(exitUsage, err)
	}
	if _, err := os.Stat(path); err != nil {
		return "", withCode(exitUsage, fmt.Errorf("workbook %s: %w", path, err))
	}
	if !upload {
		return path, nil
	}

	client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		return "", withCode(exitUsage, err)
	}
	uri, err := storage.NewWorkbooks(client, cfg.UploadPath).Upload(ctx, path, cfg.S3Bucket, runCode)
	if err != nil {
		return "", withCode(exitQueue, err)
	}
	return uri, nil
}
