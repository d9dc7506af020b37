package service

import (
	"context"
	"errors"
	"flowdata/internal/models"
	"flowdata/internal/repository"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entityTables = []string{
	"projects",
	"dimensions",
	"units",
	"conserved_entities",
	"transformable_entities",
	"goods",
	"processes",
	"transformable_entity_conserved_entities",
	"good_transformable_entities",
	"good_goods",
	"economic_flows",
	"elementary_flow_compartments",
}

func runTestImport(t *testing.T, db *sqlx.DB, opts ImportOptions, sheets ...SheetData) (*models.ImportReport, *test.Hook, error) {
	t.Helper()
	logger, hook := newTestLogger()
	wb := openTestWorkbook(t, sheets...)
	report, err := NewImporter(db, logger).Import(context.Background(), wb, opts)
	return report, hook, err
}

func requireEmptyStore(t *testing.T, db *sqlx.DB) {
	t.Helper()
	for _, table := range entityTables {
		assert.Zero(t, countRows(t, db, table), table)
	}
}

func hasMessage(hook *test.Hook, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

func goodID(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.Get(&id, "SELECT id FROM goods WHERE name = ?", name))
	return id
}

func TestImport_SampleWorkbook(t *testing.T) {
	db := newTestDB(t)

	report, hook, err := runTestImport(t, db, ImportOptions{}, SampleSheets()...)
	require.NoError(t, err)
	require.True(t, hasMessage(hook, "Import complete."))

	expected := map[string]int{
		"projects":                                1,
		"dimensions":                              2,
		"units":                                   4,
		"conserved_entities":                      2,
		"transformable_entities":                  2,
		"goods":                                   3,
		"processes":                               2,
		"transformable_entity_conserved_entities": 2,
		"good_transformable_entities":             2,
		"good_goods":                              1,
		"economic_flows":                          3,
		"elementary_flow_compartments":            4,
	}
	for table, n := range expected {
		assert.Equal(t, n, countRows(t, db, table), table)
	}

	assert.Len(t, report.Sheets, len(sheetImporters))
	assert.Equal(t, 3, report.Created[models.KindEconomicFlow])
	assert.Equal(t, 4, report.Skipped[SheetLayTrans])
	assert.False(t, report.DryRun)

	var name string
	require.NoError(t, db.Get(&name, "SELECT name FROM projects WHERE id = ?", report.ProjectID))
	assert.Equal(t, DefaultProjectName, name)
}

func TestImport_ConservedEntity(t *testing.T) {
	db := newTestDB(t)

	report, _, err := runTestImport(t, db, ImportOptions{ProjectName: "Carbon"},
		sheet(SheetConserved,
			row(ColConsID, ColName, ColDimension, ColUnit, ColMolarMass),
			row("C", "Carbon", "mass", "g", 12.011),
		),
	)
	require.NoError(t, err)

	ctx := context.Background()
	store := repository.NewStore(db)

	entities, err := store.ListConservedEntities(ctx, report.ProjectID)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "Carbon", entities[0].Name)
	assert.Equal(t, "C", entities[0].ShortName.String)
	require.True(t, entities[0].MolarMass.Valid)
	assert.InDelta(t, 12.011, entities[0].MolarMass.Float64, 1e-9)

	unit, err := store.GetUnitBySymbol(ctx, "g")
	require.NoError(t, err)
	dim, err := store.GetDimensionByID(ctx, unit.DimensionID)
	require.NoError(t, err)
	assert.Equal(t, "mass", dim.Name)
	assert.Equal(t, report.ProjectID, dim.ProjectID)
}

func TestImport_TransactionFlows(t *testing.T) {
	db := newTestDB(t)

	report, _, err := runTestImport(t, db, ImportOptions{},
		sheet(SheetGoods,
			row(ColProductID, ColName, ColRefProperty, ColUnit),
			row("P1", "Ore", "mass", "t"),
			row("P2", "Metal", "mass", "kg"),
		),
		sheet(SheetActivities,
			row(ColActivityID, ColName, ColLocation),
			row("A1", "Smelting process", "EU"),
		),
		sheet(SheetTransactions,
			row(ColGoodsIn, ColAct, ColGoodsOut, ColValue),
			row("P1", "Smelting process", "P2", 5),
		),
	)
	require.NoError(t, err)

	ctx := context.Background()
	store := repository.NewStore(db)
	processes, err := store.ListProcesses(ctx, report.ProjectID)
	require.NoError(t, err)
	require.Len(t, processes, 1)

	flows, err := store.ListEconomicFlows(ctx, processes[0].ID)
	require.NoError(t, err)
	require.Len(t, flows, 2)

	assert.Equal(t, models.DirectionInput, flows[0].Direction)
	assert.Equal(t, goodID(t, db, "Ore"), flows[0].GoodID)
	assert.Equal(t, 5.0, flows[0].Quantity)
	assert.False(t, flows[0].IsByproduct)

	assert.Equal(t, models.DirectionOutput, flows[1].Direction)
	assert.Equal(t, goodID(t, db, "Metal"), flows[1].GoodID)
	assert.Equal(t, 5.0, flows[1].Quantity)

	kg, err := store.GetUnitBySymbol(ctx, "kg")
	require.NoError(t, err)
	assert.Equal(t, kg.ID, flows[1].UnitID)
}

func TestImport_UnresolvedChildGoodRollsBack(t *testing.T) {
	db := newTestDB(t)

	goods := [][]interface{}{row(ColProductID, ColName, ColRefProperty, ColUnit)}
	for i := 0; i < 50; i++ {
		goods = append(goods, row("G"+string(rune('A'+i%26))+string(rune('a'+i/26)), "Good", "mass", "kg"))
	}

	_, _, err := runTestImport(t, db, ImportOptions{},
		SheetData{Name: SheetGoods, Rows: goods},
		sheet(SheetLayGoods,
			row(ColProductID, ColChildProduct, ColValue),
			row("GAa", "GBa", 1),
			row("GAa", "NOPE", 2),
		),
	)
	require.Error(t, err)

	var unresolvedErr *UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolvedErr))
	assert.Equal(t, SheetLayGoods, unresolvedErr.Sheet)
	assert.Equal(t, "NOPE", unresolvedErr.Ref)
	assert.Equal(t, 3, unresolvedErr.Line)
	assert.Contains(t, err.Error(), "lay_goods")
	assert.True(t, IsWorkbookError(err))

	requireEmptyStore(t, db)
}

func TestImport_DryRunPersistsNothing(t *testing.T) {
	db := newTestDB(t)

	report, hook, err := runTestImport(t, db, ImportOptions{DryRun: true}, SampleSheets()...)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 3, report.Created[models.KindEconomicFlow])
	assert.True(t, hasMessage(hook, "Dry-run complete (rolling back)."))
	assert.True(t, hasMessage(hook, "Import complete."))

	requireEmptyStore(t, db)
}

func TestImport_MissingSheetsAreNoOps(t *testing.T) {
	db := newTestDB(t)

	report, _, err := runTestImport(t, db, ImportOptions{},
		sheet(SheetGoods,
			row(ColProductID, ColName, ColRefProperty, ColUnit),
			row("P1", "Ore", "mass", "t"),
		),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{SheetGoods}, report.Sheets)
	assert.Equal(t, 1, countRows(t, db, "goods"))
	assert.Zero(t, countRows(t, db, "processes"))
	assert.Zero(t, countRows(t, db, "economic_flows"))
}

func TestImport_AbsentQuantitiesAreSkipped(t *testing.T) {
	db := newTestDB(t)

	report, _, err := runTestImport(t, db, ImportOptions{},
		sheet(SheetGoods,
			row(ColProductID, ColName, ColRefProperty, ColUnit),
			row("P1", "Ore", "mass", "t"),
			row("P2", "Metal", "mass", "t"),
		),
		sheet(SheetActivities,
			row(ColActivityID, ColName),
			row("A1", "Smelting"),
		),
		sheet(SheetLayGoods,
			row(ColProductID, ColChildProduct, ColValue),
			row("P1", "P2", ""),
		),
		sheet(SheetTransactions,
			row(ColGoodsIn, ColAct, ColGoodsOut, ColValue),
			row("P1", "Smelting", "P2", "n/a"),
			row("UNKNOWN", "Smelting", "", ""),
		),
	)
	require.NoError(t, err)
	assert.Zero(t, countRows(t, db, "good_goods"))
	assert.Zero(t, countRows(t, db, "economic_flows"))
	assert.Equal(t, 1, report.Skipped[SheetLayGoods])
	assert.Equal(t, 2, report.Skipped[SheetTransactions])
}

func TestImport_RowsWithoutIDAreDropped(t *testing.T) {
	db := newTestDB(t)

	report, _, err := runTestImport(t, db, ImportOptions{},
		sheet(SheetConserved,
			row(ColConsID, ColName, ColDimension, ColUnit),
			row("C", "", "mass", "g"),
			row("", "Iron", "mass", "g"),
			row("O", "Oxygen", "mass", "g"),
		),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, db, "conserved_entities"))
	assert.Equal(t, 2, report.Skipped[SheetConserved])
}

func TestImport_MissingRequiredKeyRollsBack(t *testing.T) {
	base := []SheetData{
		sheet(SheetConserved,
			row(ColConsID, ColName, ColDimension, ColUnit),
			row("C", "Carbon", "mass", "g"),
		),
		sheet(SheetTransformable,
			row(ColTransID, ColName, ColRefProperty, ColUnit),
			row("CO2", "Carbon dioxide", "mass", "kg"),
		),
	}

	cases := []struct {
		name  string
		sheet SheetData
		field string
	}{
		{"composition substance", sheet(SheetComposition,
			row(ColSubstance, ColElement, ColMolarComp),
			row("", "C", 1),
		), "substance"},
		{"composition element", sheet(SheetComposition,
			row(ColSubstance, ColElement, ColMolarComp),
			row("CO2", "", 1),
		), "element"},
		{"composition value", sheet(SheetComposition,
			row(ColSubstance, ColElement, ColMolarComp),
			row("CO2", "C", ""),
		), "composition"},
		{"transaction activity", sheet(SheetTransactions,
			row(ColGoodsIn, ColAct, ColGoodsOut, ColValue),
			row("P1", "", "P2", 3),
		), "activity label"},
		{"matrix row key", sheet(SheetLayTrans,
			row("id", "P1"),
			row("", 2),
		), "id"},
		{"compartment", sheet(SheetBiosphere,
			row(ColComp, ColSubcomp),
			row("", "urban air"),
		), "compartment name"},
		{"good content parent", sheet(SheetLayGoods,
			row(ColProductID, ColChildProduct, ColValue),
			row("", "P2", 1),
		), "parent productId"},
		// a missing key is fatal even when the quantity would skip the row
		{"good content child", sheet(SheetLayGoods,
			row(ColProductID, ColChildProduct, ColValue),
			row("P1", "", ""),
		), "child productId"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			sheets := append(append([]SheetData{}, base...), tc.sheet)

			_, hook, err := runTestImport(t, db, ImportOptions{}, sheets...)
			require.Error(t, err)

			var missing *MissingKeyError
			require.True(t, errors.As(err, &missing), err.Error())
			assert.Equal(t, tc.sheet.Name, missing.Sheet)
			assert.Equal(t, tc.field, missing.Field)
			assert.True(t, hasMessage(hook, "Import failed, all changes rolled back"))

			requireEmptyStore(t, db)
		})
	}
}

func TestImport_UnresolvedReferences(t *testing.T) {
	base := []SheetData{
		sheet(SheetTransformable,
			row(ColTransID, ColName, ColRefProperty, ColUnit),
			row("CO2", "Carbon dioxide", "mass", "kg"),
		),
		sheet(SheetGoods,
			row(ColProductID, ColName, ColRefProperty, ColUnit),
			row("P1", "Ore", "mass", "t"),
		),
		sheet(SheetActivities,
			row(ColActivityID, ColName),
			row("A1", "Smelting"),
		),
	}

	cases := []struct {
		name  string
		sheet SheetData
		ref   string
	}{
		{"unknown process", sheet(SheetTransactions,
			row(ColGoodsIn, ColAct, ColGoodsOut, ColValue),
			row("P1", "Rolling", "", 1),
		), "Rolling"},
		{"unknown output good", sheet(SheetTransactions,
			row(ColGoodsIn, ColAct, ColGoodsOut, ColValue),
			row("P1", "Smelting", "P9", 1),
		), "P9"},
		{"unknown composition substance", sheet(SheetComposition,
			row(ColSubstance, ColElement, ColMolarComp),
			row("H2O", "H", 2),
		), "H2O"},
		{"unknown matrix row entity", sheet(SheetLayTrans,
			row("id", "P7"),
			row("X", 1),
		), "X"},
		{"unknown input good", sheet(SheetTransactions,
			row(ColGoodsIn, ColAct, ColGoodsOut, ColValue),
			row("P9", "Smelting", "", 1),
		), "P9"},
		{"unknown composition element", sheet(SheetComposition,
			row(ColSubstance, ColElement, ColMolarComp),
			row("CO2", "Zn", 1),
		), "Zn"},
		{"unknown matrix column good", sheet(SheetLayTrans,
			row("id", "P7"),
			row("CO2", 0.5),
		), "P7"},
		{"unknown parent good", sheet(SheetLayGoods,
			row(ColProductID, ColChildProduct, ColValue),
			row("P8", "P1", 1),
		), "P8"},
		{"unknown child good", sheet(SheetLayGoods,
			row(ColProductID, ColChildProduct, ColValue),
			row("P1", "P8", 1),
		), "P8"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			sheets := append(append([]SheetData{}, base...), tc.sheet)

			_, _, err := runTestImport(t, db, ImportOptions{}, sheets...)
			require.Error(t, err)

			var unresolvedErr *UnresolvedReferenceError
			require.True(t, errors.As(err, &unresolvedErr), err.Error())
			assert.Equal(t, tc.ref, unresolvedErr.Ref)

			requireEmptyStore(t, db)
		})
	}
}

func TestImport_TransactionWithoutGoodsCreatesNoFlow(t *testing.T) {
	db := newTestDB(t)

	_, _, err := runTestImport(t, db, ImportOptions{},
		sheet(SheetGoods,
			row(ColProductID, ColName, ColRefProperty, ColUnit),
			row("P1", "Ore", "mass", "t"),
		),
		sheet(SheetActivities,
			row(ColActivityID, ColName),
			row("A1", "Smelting"),
		),
		sheet(SheetTransactions,
			row(ColGoodsIn, ColAct, ColGoodsOut, ColValue),
			row("", "Smelting", "", 4),
		),
	)
	require.NoError(t, err)
	assert.Zero(t, countRows(t, db, "economic_flows"))
	assert.Equal(t, 1, countRows(t, db, "processes"))
}

func TestImport_GoodMayContainItself(t *testing.T) {
	db := newTestDB(t)

	_, _, err := runTestImport(t, db, ImportOptions{},
		sheet(SheetGoods,
			row(ColProductID, ColName, ColRefProperty, ColUnit),
			row("P1", "Scrap", "mass", "t"),
		),
		sheet(SheetLayGoods,
			row(ColProductID, ColChildProduct, ColValue),
			row("P1", "P1", 0.1),
		),
	)
	require.NoError(t, err)

	var edge models.GoodContainGood
	require.NoError(t, db.Get(&edge, "SELECT id, parent_good_id, child_good_id, quantity, unit_id FROM good_goods"))
	assert.Equal(t, edge.ParentGoodID, edge.ChildGoodID)
	assert.InDelta(t, 0.1, edge.Quantity, 1e-9)
}

func TestImport_MatrixRowFallsBackToName(t *testing.T) {
	db := newTestDB(t)

	_, _, err := runTestImport(t, db, ImportOptions{},
		sheet(SheetTransformable,
			row(ColTransID, ColName, ColRefProperty, ColUnit),
			row("CO2", "Carbon dioxide", "mass", "kg"),
		),
		sheet(SheetGoods,
			row(ColProductID, ColName, ColRefProperty, ColUnit),
			row("P1", "Flue gas", "volume", "m3"),
		),
		sheet(SheetLayTrans,
			row("id", "P1"),
			row("carbon  DIOXIDE", 0.2),
		),
	)
	require.NoError(t, err)

	var edge models.GoodContainTransformableEntity
	require.NoError(t, db.Get(&edge, "SELECT id, good_id, transformable_entity_id, quantity, unit_id FROM good_transformable_entities"))
	assert.InDelta(t, 0.2, edge.Quantity, 1e-9)

	var refUnit int64
	require.NoError(t, db.Get(&refUnit, "SELECT reference_unit_id FROM goods WHERE id = ?", edge.GoodID))
	assert.Equal(t, refUnit, edge.UnitID)
}

func TestImport_VerboseLogsRows(t *testing.T) {
	db := newTestDB(t)

	_, hook, err := runTestImport(t, db, ImportOptions{Verbose: true},
		sheet(SheetConserved,
			row(ColConsID, ColName, ColDimension, ColUnit),
			row("C", "Carbon", "mass", "g"),
		),
	)
	require.NoError(t, err)
	assert.True(t, hasMessage(hook, "-| Detected ConservedEntity: Carbon"))
	assert.True(t, hasMessage(hook, "  -| Creating Unit"))

	quietDB := newTestDB(t)
	_, quiet, err := runTestImport(t, quietDB, ImportOptions{},
		sheet(SheetConserved,
			row(ColConsID, ColName, ColDimension, ColUnit),
			row("C", "Carbon", "mass", "g"),
		),
	)
	require.NoError(t, err)
	assert.False(t, hasMessage(quiet, "-| Detected ConservedEntity: Carbon"))
}

func TestImportFile_MissingFile(t *testing.T) {
	logger, _ := newTestLogger()
	_, err := NewImporter(newTestDB(t), logger).ImportFile(context.Background(), "/does/not/exist.xlsx", ImportOptions{})
	require.Error(t, err)
	assert.False(t, IsWorkbookError(err))
	assert.True(t, IsOpenError(err))
}

func TestImportFile_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a zip archive"), 0o644))

	logger, _ := newTestLogger()
	_, err := NewImporter(newTestDB(t), logger).ImportFile(context.Background(), path, ImportOptions{})
	require.Error(t, err)

	var open *OpenError
	require.True(t, errors.As(err, &open), err.Error())
	assert.Equal(t, path, open.Path)
}
