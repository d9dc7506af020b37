package service

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetData is one sheet to write: a header row followed by data rows.
type SheetData struct {
	Name string
	Rows [][]interface{}
}

// TemplateSheets returns every recognised sheet with only its header row.
func TemplateSheets() []SheetData {
	sheets := make([]SheetData, 0, len(sheetImporters))
	for _, si := range sheetImporters {
		cols := SheetColumns[si.sheet]
		header := make([]interface{}, 0, len(cols))
		for _, c := range cols {
			header = append(header, c)
		}
		sheets = append(sheets, SheetData{Name: si.sheet, Rows: [][]interface{}{header}})
	}
	return sheets
}

// WriteTemplate creates an empty source workbook with the expected headers.
func WriteTemplate(outputPath string) error {
	return WriteWorkbook(outputPath, TemplateSheets())
}

// WriteWorkbook writes sheets to a new xlsx file. Header rows are styled.
func WriteWorkbook(outputPath string, sheets []SheetData) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	keepDefault := false
	for _, sheet := range sheets {
		if sheet.Name == "Sheet1" {
			keepDefault = true
		}
		if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet.Name, err)
		}

		for i, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet.Name, i+1, err)
			}
		}

		if len(sheet.Rows) > 0 && len(sheet.Rows[0]) > 0 {
			last, err := excelize.CoordinatesToCellName(len(sheet.Rows[0]), 1)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
				return err
			}
			lastCol, _ := excelize.ColumnNumberToName(len(sheet.Rows[0]))
			_ = f.SetColWidth(sheet.Name, "A", lastCol, 18)
		}
	}

	if !keepDefault {
		f.DeleteSheet("Sheet1")
	}
	if idx, err := f.GetSheetIndex(sheets[0].Name); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	return f.SaveAs(outputPath)
}
