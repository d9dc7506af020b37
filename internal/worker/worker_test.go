package worker

import (
	"context"
	"encoding/json"
	"errors"
	"flowdata/internal/config"
	"flowdata/internal/database"
	"flowdata/internal/models"
	"flowdata/internal/repository"
	"flowdata/internal/service"
	"flowdata/internal/storage"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStatusStore struct {
	mu      sync.Mutex
	history []models.ImportStatus
}

func (m *memoryStatusStore) Save(_ context.Context, status *models.ImportStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, *status)
	return nil
}

func (m *memoryStatusStore) Get(_ context.Context, runCode string) (*models.ImportStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].RunCode == runCode {
			s := m.history[i]
			return &s, nil
		}
	}
	return nil, ErrStatusNotFound
}

func newTestHandler(t *testing.T) (*ImportTaskHandler, *memoryStatusStore, *sqlx.DB) {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "worker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, _ := test.NewNullLogger()
	statuses := &memoryStatusStore{}
	cfg := &config.Config{ImportProjectName: "Queued Project"}
	return NewImportTaskHandler(service.NewImporter(db, logger), nil, statuses, cfg, logger), statuses, db
}

func TestNewImportTask(t *testing.T) {
	task, err := NewImportTask(ImportPayload{RunCode: "IMPORT-1", FilePath: "/data/a.xlsx", DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, TypeWorkbookImport, task.Type())

	var payload ImportPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "IMPORT-1", payload.RunCode)
	assert.True(t, payload.DryRun)

	_, err = NewImportTask(ImportPayload{FilePath: "/data/a.xlsx"})
	require.Error(t, err)
	_, err = NewImportTask(ImportPayload{RunCode: "IMPORT-1"})
	require.Error(t, err)
}

func TestStatusKey(t *testing.T) {
	assert.Equal(t, "import:status:IMPORT-1", StatusKey("IMPORT-1"))
}

func TestHandle_Completed(t *testing.T) {
	h, statuses, db := newTestHandler(t)

	path := filepath.Join(t.TempDir(), "sample.xlsx")
	require.NoError(t, service.WriteSample(path))

	task, err := NewImportTask(ImportPayload{RunCode: "IMPORT-OK", FilePath: path})
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), task))

	require.Len(t, statuses.history, 2)
	assert.Equal(t, StatusRunning, statuses.history[0].Status)

	final, err := statuses.Get(context.Background(), "IMPORT-OK")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, final.Status)
	require.NotNil(t, final.Report)
	assert.Equal(t, "IMPORT-OK", final.Report.RunID)

	var name string
	require.NoError(t, db.Get(&name, "SELECT name FROM projects WHERE id = ?", final.Report.ProjectID))
	assert.Equal(t, "Queued Project", name)
}

func TestHandle_WorkbookErrorSkipsRetry(t *testing.T) {
	h, statuses, db := newTestHandler(t)

	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, service.WriteWorkbook(path, []service.SheetData{{
		Name: service.SheetLayGoods,
		Rows: [][]interface{}{
			{service.ColProductID, service.ColChildProduct, service.ColValue},
			{"P1", "P2", 1},
		},
	}}))

	task, err := NewImportTask(ImportPayload{RunCode: "IMPORT-BAD", FilePath: path})
	require.NoError(t, err)

	err = h.Handle(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	final, err := statuses.Get(context.Background(), "IMPORT-BAD")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, final.Status)
	assert.Contains(t, final.Error, "lay_goods")

	n, err := repository.NewStore(db).Count(context.Background(), "projects")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHandle_UnreadableWorkbookSkipsRetry(t *testing.T) {
	h, statuses, _ := newTestHandler(t)

	path := filepath.Join(t.TempDir(), "flows.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	task, err := NewImportTask(ImportPayload{RunCode: "IMPORT-TXT", FilePath: path})
	require.NoError(t, err)

	err = h.Handle(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.True(t, service.IsOpenError(err))

	final, err := statuses.Get(context.Background(), "IMPORT-TXT")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, final.Status)
}

func TestHandle_ObjectStorageNotConfigured(t *testing.T) {
	h, statuses, _ := newTestHandler(t)

	task, err := NewImportTask(ImportPayload{RunCode: "IMPORT-S3", FilePath: "s3://imports/flows.xlsx"})
	require.NoError(t, err)

	err = h.Handle(context.Background(), task)
	require.ErrorIs(t, err, storage.ErrNoObjectStore)

	final, err := statuses.Get(context.Background(), "IMPORT-S3")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, final.Status)
}

func TestHandle_BadPayload(t *testing.T) {
	h, statuses, _ := newTestHandler(t)

	err := h.Handle(context.Background(), asynq.NewTask(TypeWorkbookImport, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, statuses.history)
}
