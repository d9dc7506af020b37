package service

import (
	"context"
	"database/sql"
	"flowdata/internal/metrics"
	"flowdata/internal/models"
	"flowdata/internal/repository"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const DefaultProjectName = "New Imported Project"

// ImportStore is the store surface used by the sheet importers.
type ImportStore interface {
	ReferenceStore
	CreateProject(ctx context.Context, project *models.Project) error
	CreateConservedEntity(ctx context.Context, entity *models.ConservedEntity) error
	CreateTransformableEntity(ctx context.Context, entity *models.TransformableEntity) error
	ListTransformableEntities(ctx context.Context, projectID int64) ([]models.TransformableEntity, error)
	CreateGood(ctx context.Context, good *models.Good) error
	CreateProcess(ctx context.Context, process *models.Process) error
	CreateTransformableContainConserved(ctx context.Context, edge *models.TransformableEntityContainConservedEntity) error
	CreateGoodContainTransformable(ctx context.Context, edge *models.GoodContainTransformableEntity) error
	CreateGoodContainGood(ctx context.Context, edge *models.GoodContainGood) error
	CreateEconomicFlow(ctx context.Context, flow *models.EconomicFlow) error
}

// TxBeginner opens the transaction an import runs in. *sqlx.DB satisfies it.
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type ImportOptions struct {
	DryRun      bool
	Verbose     bool
	ProjectName string
	RunID       string
}

type sheetImporter struct {
	sheet string
	run   func(r *importRun, ctx context.Context, wb *Workbook) error
}

// Sheets are imported in this order: every sheet resolves references
// against entities created by the sheets before it.
var sheetImporters = []sheetImporter{
	{SheetConserved, (*importRun).importConserved},
	{SheetTransformable, (*importRun).importTransformables},
	{SheetGoods, (*importRun).importGoods},
	{SheetActivities, (*importRun).importActivities},
	{SheetComposition, (*importRun).importCompositions},
	{SheetLayTrans, (*importRun).importGoodTransformables},
	{SheetLayGoods, (*importRun).importGoodGoods},
	{SheetTransactions, (*importRun).importEconomicFlows},
	{SheetBiosphere, (*importRun).importCompartments},
}

// Importer materialises a workbook into a new project inside one transaction.
type Importer struct {
	db     TxBeginner
	logger *logrus.Logger
}

func NewImporter(db TxBeginner, logger *logrus.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// ImportFile opens the workbook at filePath and imports it.
func (im *Importer) ImportFile(ctx context.Context, filePath string, opts ImportOptions) (*models.ImportReport, error) {
	wb, err := OpenWorkbook(filePath)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return im.Import(ctx, wb, opts)
}

// Import runs every sheet importer in order. Any error rolls the whole run
// back; with DryRun the transaction is rolled back even on success.
func (im *Importer) Import(ctx context.Context, wb *Workbook, opts ImportOptions) (report *models.ImportReport, err error) {
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	if strings.TrimSpace(opts.ProjectName) == "" {
		opts.ProjectName = DefaultProjectName
	}

	report = models.NewImportReport(opts.RunID, wb.Path(), opts.DryRun)
	log := im.logger.WithFields(logrus.Fields{"run_id": opts.RunID, "file": wb.Path()})

	defer func() {
		report.FinishedAt = time.Now()
		metrics.RecordRun(opts.DryRun, err == nil, report.FinishedAt.Sub(report.StartedAt).Seconds())
		if err != nil {
			log.WithError(err).Error("Import failed, all changes rolled back")
		}
	}()

	tx, err := im.db.BeginTxx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("begin transaction: %w", err)
	}
	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback()
		}
	}()

	run := newImportRun(repository.NewStore(tx), report, log, opts.Verbose)
	if err := run.execute(ctx, wb, opts.ProjectName); err != nil {
		return report, err
	}

	finished = true
	if opts.DryRun {
		log.Info("Dry-run complete (rolling back).")
		if err := tx.Rollback(); err != nil {
			return report, fmt.Errorf("rollback dry run: %w", err)
		}
	} else {
		if err := tx.Commit(); err != nil {
			return report, fmt.Errorf("commit import: %w", err)
		}
		metrics.RecordCreated(report.Created)
	}
	metrics.RecordSkipped(report.Skipped)

	log.WithFields(logrus.Fields{
		"project_id": report.ProjectID,
		"dry_run":    report.DryRun,
		"sheets":     report.Sheets,
		"created":    report.Created,
		"skipped":    report.Skipped,
	}).Info("Import complete.")
	return report, nil
}

// importRun is the state of one import: the transaction-bound store, the
// resolver caches and the project that owns every imported row.
type importRun struct {
	store    ImportStore
	resolver *Resolver
	report   *models.ImportReport
	log      *logrus.Entry
	verbose  bool
	project  *models.Project
}

func newImportRun(store ImportStore, report *models.ImportReport, log *logrus.Entry, verbose bool) *importRun {
	r := &importRun{
		store:   store,
		report:  report,
		log:     log,
		verbose: verbose,
	}
	r.resolver = NewResolver(store, log)
	r.resolver.verbose = verbose
	r.resolver.created = r.created
	return r
}

func (r *importRun) execute(ctx context.Context, wb *Workbook, projectName string) error {
	r.log.Info("Creating new project...")
	r.project = &models.Project{Name: projectName}
	if err := r.store.CreateProject(ctx, r.project); err != nil {
		return err
	}
	r.created(models.KindProject)
	r.report.ProjectID = r.project.ID

	for _, si := range sheetImporters {
		if !wb.HasSheet(si.sheet) {
			r.log.WithField("sheet", si.sheet).Debug("Sheet not present, skipping")
			continue
		}
		r.log.WithField("sheet", si.sheet).Info("Importing sheet...")
		if err := si.run(r, ctx, wb); err != nil {
			return err
		}
		r.report.Sheets = append(r.report.Sheets, si.sheet)
	}
	return nil
}

func (r *importRun) created(kind string) {
	r.report.Created[kind]++
}

func (r *importRun) skip(sheet string) {
	r.report.Skipped[sheet]++
}

func (r *importRun) detail(fields logrus.Fields, msg string) {
	if r.verbose {
		r.log.WithFields(fields).Info(msg)
	}
}
