package worker

import (
	"context"
	"flowdata/internal/config"
	"flowdata/internal/models"
	"flowdata/internal/service"
	"flowdata/internal/storage"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

type ImportTaskHandler struct {
	importer  *service.Importer
	workbooks *storage.Workbooks
	statuses  StatusStore
	cfg       *config.Config
	logger    *logrus.Logger
}

func NewImportTaskHandler(importer *service.Importer, workbooks *storage.Workbooks, statuses StatusStore, cfg *config.Config, logger *logrus.Logger) *ImportTaskHandler {
	if workbooks == nil {
		workbooks = storage.NewWorkbooks(nil, "")
	}
	return &ImportTaskHandler{
		importer:  importer,
		workbooks: workbooks,
		statuses:  statuses,
		cfg:       cfg,
		logger:    logger,
	}
}

// Handle runs one queued import. Workbook errors are final and skip retry;
// anything else is returned as is and left to the queue's retry policy.
func (h *ImportTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	payload, err := decodePayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	log := h.logger.WithFields(logrus.Fields{"run_code": payload.RunCode, "file": payload.FilePath})
	log.Info("Starting queued import")

	status := &models.ImportStatus{
		RunCode: payload.RunCode,
		Status:  StatusRunning,
		File:    payload.FilePath,
		DryRun:  payload.DryRun,
	}
	h.saveStatus(ctx, log, status)

	projectName := payload.ProjectName
	if projectName == "" && h.cfg != nil {
		projectName = h.cfg.ImportProjectName
	}

	path, cleanup, err := h.workbooks.Fetch(ctx, payload.FilePath)
	if err != nil {
		status.Status = StatusFailed
		status.Error = err.Error()
		h.saveStatus(ctx, log, status)
		return fmt.Errorf("import %s: %w", payload.RunCode, err)
	}
	defer cleanup()

	report, err := h.importer.ImportFile(ctx, path, service.ImportOptions{
		DryRun:      payload.DryRun,
		Verbose:     payload.Verbose,
		ProjectName: projectName,
		RunID:       payload.RunCode,
	})
	status.Report = report
	if err != nil {
		status.Status = StatusFailed
		status.Error = err.Error()
		h.saveStatus(ctx, log, status)
		if service.IsWorkbookError(err) || service.IsOpenError(err) {
			return fmt.Errorf("import %s: %w: %w", payload.RunCode, err, asynq.SkipRetry)
		}
		return fmt.Errorf("import %s: %w", payload.RunCode, err)
	}

	status.Status = StatusCompleted
	h.saveStatus(ctx, log, status)
	log.WithField("project_id", report.ProjectID).Info("Queued import completed")
	return nil
}

// Status is best effort: a redis outage must not fail an import that
// already committed.
func (h *ImportTaskHandler) saveStatus(ctx context.Context, log *logrus.Entry, status *models.ImportStatus) {
	if h.statuses == nil {
		return
	}
	if err := h.statuses.Save(ctx, status); err != nil {
		log.WithError(err).Warn("Failed to publish import status")
	}
}
