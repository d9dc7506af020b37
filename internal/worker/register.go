package worker

import (
	"context"
	"flowdata/internal/config"
	"flowdata/internal/service"
	"flowdata/internal/storage"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redis *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	importer := service.NewImporter(db, logger)
	statuses := NewRedisStatusStore(redis, cfg.StatusTTL)

	// Without object storage only local workbook paths can be imported.
	var objects storage.ObjectStore
	if client, err := storage.NewS3Client(context.Background(), cfg); err != nil {
		logger.WithError(err).Warn("S3 client unavailable, s3:// workbooks will fail")
	} else {
		objects = client
	}
	workbooks := storage.NewWorkbooks(objects, cfg.UploadPath)

	importHandler := NewImportTaskHandler(importer, workbooks, statuses, cfg, logger)
	mux.HandleFunc(TypeWorkbookImport, importHandler.Handle)
}
