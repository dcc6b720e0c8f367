// Package export turns selected records into spreadsheet files and hands
// them to the user.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is a worksheet-shaped table: a header row and data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Build serialises sheet into an xlsx workbook holding that single sheet.
func Build(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := sheet.Name
	if name == "" {
		name = "Sheet1"
	}
	if name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return nil, fmt.Errorf("export: name sheet: %w", err)
		}
	}

	header := make([]any, len(sheet.Header))
	for i, label := range sheet.Header {
		header[i] = label
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, fmt.Errorf("export: header: %w", err)
	}
	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := row
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return nil, fmt.Errorf("export: row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write: %w", err)
	}
	return buf.Bytes(), nil
}

// Workbook is a parsed spreadsheet.
type Workbook struct {
	Sheets []string
	rows   map[string][][]string
}

// ReadWorkbook parses every sheet of an xlsx file.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("export: open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{Sheets: f.GetSheetList(), rows: make(map[string][][]string)}
	for _, name := range wb.Sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("export: read sheet %q: %w", name, err)
		}
		wb.rows[name] = rows
	}
	return wb, nil
}

// Rows returns the rows of the named sheet, the first sheet when name is
// empty. limit <= 0 returns every row.
func (w *Workbook) Rows(name string, limit int) [][]string {
	if w == nil || len(w.Sheets) == 0 {
		return nil
	}
	if name == "" {
		name = w.Sheets[0]
	}
	rows := w.rows[name]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// Header returns the first row of the named sheet.
func (w *Workbook) Header(name string) []string {
	rows := w.Rows(name, 1)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

// Has reports whether the workbook contains the named sheet.
func (w *Workbook) Has(name string) bool {
	for _, s := range w.Sheets {
		if s == name {
			return true
		}
	}
	return false
}
