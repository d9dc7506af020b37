package service

import (
	"database/sql"
	"flowdata/internal/utils"
)

// Sheet names recognised in a source workbook, in import order.
const (
	SheetConserved     = "l_cons"
	SheetTransformable = "l_trans"
	SheetGoods         = "l_goods"
	SheetActivities    = "l_act"
	SheetComposition   = "cons_permol"
	SheetLayTrans      = "lay_trans"
	SheetLayGoods      = "lay_goods"
	SheetTransactions  = "tr"
	SheetBiosphere     = "background_biosphere"
)

// Column headers per sheet.
const (
	ColConsID       = "consId"
	ColName         = "name"
	ColDimension    = "dimension"
	ColUnit         = "unit"
	ColMolarMass    = "Molar mass [g/mol]"
	ColTransID      = "id"
	ColRefProperty  = "reference_property"
	ColProductID    = "productId"
	ColActivityID   = "activityId"
	ColLocation     = "location"
	ColSubstance    = "substance"
	ColElement      = "element"
	ColMolarComp    = "molar composition"
	ColChildProduct = "ID of products inside product"
	ColValue        = "value"
	ColGoodsIn      = "goods_in ID"
	ColAct          = "act"
	ColGoodsOut     = "out ID"
	ColComp         = "comp"
	ColSubcomp      = "subcomp"
)

// SheetColumns lists the header row of every header-keyed sheet. lay_trans is
// a matrix: its header is a row-entity label followed by product ids.
var SheetColumns = map[string][]string{
	SheetConserved:     {ColConsID, ColName, ColDimension, ColUnit, ColMolarMass},
	SheetTransformable: {ColTransID, ColName, ColRefProperty, ColUnit},
	SheetGoods:         {ColProductID, ColName, ColRefProperty, ColUnit},
	SheetActivities:    {ColActivityID, ColName, ColLocation},
	SheetComposition:   {ColSubstance, ColElement, ColMolarComp},
	SheetLayTrans:      {ColTransID},
	SheetLayGoods:      {ColProductID, ColChildProduct, ColValue},
	SheetTransactions:  {ColGoodsIn, ColAct, ColGoodsOut, ColValue},
	SheetBiosphere:     {ColComp, ColSubcomp},
}

type conservedRow struct {
	Record
	ExtID     string
	Name      string
	Dimension string
	Unit      string
	MolarMass sql.NullFloat64
}

type transformableRow struct {
	Record
	ExtID     string
	Name      string
	Dimension string
	Unit      string
}

type goodRow struct {
	Record
	ProductID string
	Name      string
	Dimension string
	Unit      string
}

type activityRow struct {
	Record
	ActivityID string
	Name       string
	Location   string
}

type compositionRow struct {
	Record
	Substance string
	Element   string
	Ratio     sql.NullFloat64
}

type goodContentRow struct {
	Record
	ParentID string
	ChildID  string
	Quantity sql.NullFloat64
}

type transactionRow struct {
	Record
	InputID  string
	Activity string
	OutputID string
	Quantity sql.NullFloat64
}

type compartmentRow struct {
	Record
	Compartment    string
	SubCompartment string
}

func quantity(raw string) sql.NullFloat64 {
	v, ok := utils.ParseQuantity(raw)
	return sql.NullFloat64{Float64: v, Valid: ok}
}

func decodeConservedRows(records []Record) []conservedRow {
	rows := make([]conservedRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, conservedRow{
			Record:    r,
			ExtID:     r.Get(ColConsID),
			Name:      r.Get(ColName),
			Dimension: r.Get(ColDimension),
			Unit:      r.Get(ColUnit),
			MolarMass: quantity(r.Get(ColMolarMass)),
		})
	}
	return rows
}

func decodeTransformableRows(records []Record) []transformableRow {
	rows := make([]transformableRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, transformableRow{
			Record:    r,
			ExtID:     r.Get(ColTransID),
			Name:      r.Get(ColName),
			Dimension: r.Get(ColRefProperty),
			Unit:      r.Get(ColUnit),
		})
	}
	return rows
}

func decodeGoodRows(records []Record) []goodRow {
	rows := make([]goodRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, goodRow{
			Record:    r,
			ProductID: r.Get(ColProductID),
			Name:      r.Get(ColName),
			Dimension: r.Get(ColRefProperty),
			Unit:      r.Get(ColUnit),
		})
	}
	return rows
}

func decodeActivityRows(records []Record) []activityRow {
	rows := make([]activityRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, activityRow{
			Record:     r,
			ActivityID: r.Get(ColActivityID),
			Name:       r.Get(ColName),
			Location:   r.Get(ColLocation),
		})
	}
	return rows
}

func decodeCompositionRows(records []Record) []compositionRow {
	rows := make([]compositionRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, compositionRow{
			Record:    r,
			Substance: r.Get(ColSubstance),
			Element:   r.Get(ColElement),
			Ratio:     quantity(r.Get(ColMolarComp)),
		})
	}
	return rows
}

func decodeGoodContentRows(records []Record) []goodContentRow {
	rows := make([]goodContentRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, goodContentRow{
			Record:   r,
			ParentID: r.Get(ColProductID),
			ChildID:  r.Get(ColChildProduct),
			Quantity: quantity(r.Get(ColValue)),
		})
	}
	return rows
}

func decodeTransactionRows(records []Record) []transactionRow {
	rows := make([]transactionRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, transactionRow{
			Record:   r,
			InputID:  r.Get(ColGoodsIn),
			Activity: r.Get(ColAct),
			OutputID: r.Get(ColGoodsOut),
			Quantity: quantity(r.Get(ColValue)),
		})
	}
	return rows
}

func decodeCompartmentRows(records []Record) []compartmentRow {
	rows := make([]compartmentRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, compartmentRow{
			Record:         r,
			Compartment:    r.Get(ColComp),
			SubCompartment: r.Get(ColSubcomp),
		})
	}
	return rows
}
