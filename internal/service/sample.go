package service

// SampleSheets is a small, fully consistent dataset: two elements, two
// species, three goods, two processes and a compartment tree.
func SampleSheets() []SheetData {
	return []SheetData{
		{Name: SheetConserved, Rows: [][]interface{}{
			{ColConsID, ColName, ColDimension, ColUnit, ColMolarMass},
			{"C", "Carbon", "mass", "g", 12.011},
			{"Fe", "Iron", "mass", "g", 55.845},
		}},
		{Name: SheetTransformable, Rows: [][]interface{}{
			{ColTransID, ColName, ColRefProperty, ColUnit},
			{"CO2", "Carbon dioxide", "mass", "kg"},
			{"Fe2O3", "Hematite", "mass", "kg"},
		}},
		{Name: SheetGoods, Rows: [][]interface{}{
			{ColProductID, ColName, ColRefProperty, ColUnit},
			{"P1", "Iron ore", "mass", "t"},
			{"P2", "Pig iron", "mass", "t"},
			{"P3", "Coke", "mass", "t"},
		}},
		{Name: SheetActivities, Rows: [][]interface{}{
			{ColActivityID, ColName, ColLocation},
			{"A1", "Smelting process", "EU"},
			{"A2", "Coking", "EU"},
		}},
		{Name: SheetComposition, Rows: [][]interface{}{
			{ColSubstance, ColElement, ColMolarComp},
			{"CO2", "C", 1},
			{"Fe2O3", "Fe", 2},
		}},
		{Name: SheetLayTrans, Rows: [][]interface{}{
			{"id good", "P1", "P2", "P3"},
			{"Fe2O3", 0.8, "", ""},
			{"Carbon dioxide", "", "", 0.05},
		}},
		{Name: SheetLayGoods, Rows: [][]interface{}{
			{ColProductID, ColChildProduct, ColValue},
			{"P2", "P3", 0.4},
		}},
		{Name: SheetTransactions, Rows: [][]interface{}{
			{ColGoodsIn, ColAct, ColGoodsOut, ColValue},
			{"P1", "Smelting process", "P2", 5},
			{"", "Coking plant, EU", "P3", 2},
		}},
		{Name: SheetBiosphere, Rows: [][]interface{}{
			{ColComp, ColSubcomp},
			{"air", "urban air"},
			{"air", "rural air"},
			{"water", ""},
		}},
	}
}

// WriteSample writes SampleSheets to outputPath.
func WriteSample(outputPath string) error {
	return WriteWorkbook(outputPath, SampleSheets())
}
