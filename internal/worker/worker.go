package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TypeWorkbookImport is the asynq task type for queued workbook imports.
const TypeWorkbookImport = "workbook:import"

type ImportPayload struct {
	RunCode     string `json:"run_code"`
	FilePath    string `json:"file_path"`
	DryRun      bool   `json:"dry_run"`
	Verbose     bool   `json:"verbose"`
	ProjectName string `json:"project_name,omitempty"`
}

// NewImportTask builds the task for one import run. Imports are not retried
// by default: a workbook that failed once fails the same way again.
func NewImportTask(payload ImportPayload) (*asynq.Task, error) {
	if payload.RunCode == "" {
		return nil, fmt.Errorf("import task: empty run code")
	}
	if payload.FilePath == "" {
		return nil, fmt.Errorf("import task: empty file path")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal import payload: %w", err)
	}

	return asynq.NewTask(TypeWorkbookImport, data,
		asynq.TaskID(payload.RunCode),
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}

func decodePayload(task *asynq.Task) (ImportPayload, error) {
	var payload ImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.RunCode == "" || payload.FilePath == "" {
		return payload, fmt.Errorf("incomplete payload: run_code and file_path are required")
	}
	return payload, nil
}
