package service

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook is an opened source workbook exposing its sheets by name.
type Workbook struct {
	file   *excelize.File
	path   string
	sheets map[string]bool
}

// Record is one data row of a header-keyed sheet.
type Record struct {
	Line   int
	Header []string
	Values map[string]string
}

// Get returns the trimmed value of a column, "" when the column is missing.
func (r Record) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

func (r Record) String() string {
	parts := make([]string, 0, len(r.Header))
	for _, h := range r.Header {
		parts = append(parts, fmt.Sprintf("%s: %q", h, r.Values[h]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MatrixRow is one data row of a matrix-shaped sheet.
type MatrixRow struct {
	Line  int
	Cells []string
}

// Cell returns the trimmed cell at index i, "" past the end of the row.
func (r MatrixRow) Cell(i int) string {
	if i < len(r.Cells) {
		return strings.TrimSpace(r.Cells[i])
	}
	return ""
}

func (r MatrixRow) String() string {
	return fmt.Sprintf("%q", r.Cells)
}

// Matrix is a sheet whose first header cell names the row entity and whose
// remaining header cells name column entities.
type Matrix struct {
	Header []string
	Rows   []MatrixRow
}

// OpenWorkbook opens an xlsx file for reading.
func OpenWorkbook(filePath string) (*Workbook, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, &OpenError{Path: filePath, Err: err}
	}

	sheets := map[string]bool{}
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}
	return &Workbook{file: f, path: filePath, sheets: sheets}, nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) Path() string {
	return w.path
}

func (w *Workbook) HasSheet(name string) bool {
	return w.sheets[name]
}

func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *Workbook) rows(sheet string) ([][]string, error) {
	if !w.HasSheet(sheet) {
		return nil, nil
	}
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", sheet, err)
	}
	return rows, nil
}

// Records decodes a sheet using its first row as column headers. Columns with
// a blank header are dropped and rows blank across the kept columns skipped.
// A missing sheet yields no records.
func (w *Workbook) Records(sheet string) ([]Record, error) {
	rows, err := w.rows(sheet)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	header := rows[0]
	var idxs []int
	var names []string
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		idxs = append(idxs, i)
		names = append(names, h)
	}

	var records []Record
	for n, row := range rows[1:] {
		values := make(map[string]string, len(idxs))
		blank := true
		for k, i := range idxs {
			v := getCellValue(row, i)
			if strings.TrimSpace(v) != "" {
				blank = false
			}
			values[names[k]] = v
		}
		if blank {
			continue
		}
		records = append(records, Record{Line: n + 2, Header: names, Values: values})
	}
	return records, nil
}

// Matrix decodes a sheet as a raw header plus data rows, skipping blank rows.
func (w *Workbook) Matrix(sheet string) (*Matrix, error) {
	rows, err := w.rows(sheet)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	m := &Matrix{Header: rows[0]}
	for n, row := range rows[1:] {
		blank := true
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		m.Rows = append(m.Rows, MatrixRow{Line: n + 2, Cells: row})
	}
	return m, nil
}

// Helper functions
func getCellValue(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}
