package service

import (
	"context"
	"flowdata/internal/database"
	"flowdata/internal/repository"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "flows.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

func writeTestWorkbook(t *testing.T, sheets ...SheetData) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.xlsx")
	require.NoError(t, WriteWorkbook(path, sheets))
	return path
}

func openTestWorkbook(t *testing.T, sheets ...SheetData) *Workbook {
	t.Helper()
	wb, err := OpenWorkbook(writeTestWorkbook(t, sheets...))
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	n, err := repository.NewStore(db).Count(context.Background(), table)
	require.NoError(t, err)
	return n
}

func sheet(name string, rows ...[]interface{}) SheetData {
	return SheetData{Name: name, Rows: rows}
}

func row(values ...interface{}) []interface{} {
	return values
}
