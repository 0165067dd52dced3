// Package sheetsvc reads gradebook workbooks into the row maps the
// pipeline consumes.
package sheetsvc

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mkuprys/gradefold/core"
)

// ExcelSource reads an .xlsx workbook. Sheet layout: row 1 carries the
// per-column dates, row 2 the column names, student rows follow, and an
// optional trailing row without a student name carries per-column
// context text.
type ExcelSource struct {
	path string
	conf *core.Config
	log  core.Logger
}

var _ core.SheetSource = (*ExcelSource)(nil)

func NewExcelSource(path string, conf *core.Config, log core.Logger) *ExcelSource {
	return &ExcelSource{path: path, conf: conf, log: log}
}

// ReadSheets reads every configured sheet (all sheets when no mapping is
// configured). An unreadable sheet is skipped with a warning; only an
// unreadable workbook aborts.
func (s *ExcelSource) ReadSheets() ([]core.Sheet, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, core.NewShutdownError("opening workbook " + s.path + ": " + err.Error())
	}
	defer f.Close()

	var sheets []core.Sheet
	for _, name := range f.GetSheetList() {
		class := name
		if len(s.conf.SheetClasses) > 0 {
			mapped, ok := s.conf.SheetClasses[name]
			if !ok {
				continue
			}
			class = mapped
		}
		rows, err := f.GetRows(name)
		if err != nil {
			s.log.Warn("unreadable sheet skipped", map[string]interface{}{
				"sheet": name, "error": err.Error(),
			})
			continue
		}
		sheets = append(sheets, s.buildSheet(name, class, rows))
	}
	return sheets, nil
}

func (s *ExcelSource) buildSheet(name, class string, rows [][]string) core.Sheet {
	sheet := core.Sheet{
		SheetName:     name,
		ClassName:     class,
		ColumnDates:   make(map[string]string),
		ColumnContext: make(map[string]string),
	}
	if len(rows) < 2 {
		s.log.Warn("sheet has no header rows", map[string]interface{}{"sheet": name})
		return sheet
	}

	dateRow, headerRow := rows[0], rows[1]
	headers := make([]string, len(headerRow))
	for i, h := range headerRow {
		h = core.CleanString(h)
		headers[i] = h
		if h == "" || i >= len(dateRow) {
			continue
		}
		if iso, ok := parseDate(dateRow[i]); ok {
			sheet.ColumnDates[h] = iso
		}
	}

	for _, raw := range rows[2:] {
		row := make(core.Row, len(headers))
		empty := true
		for i, h := range headers {
			if h == "" {
				continue
			}
			val := ""
			if i < len(raw) {
				val = strings.TrimSpace(raw[i])
			}
			row[h] = val
			if val != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	// A trailing row without a student name is the context row.
	if n := len(sheet.Rows); n > 0 {
		last := sheet.Rows[n-1]
		if core.CellString(last[core.ColumnFirstName]) == "" &&
			core.CellString(last[core.ColumnLastName]) == "" {
			for col, v := range last {
				if core.IsStandardColumn(col) {
					continue
				}
				if text := core.CellString(v); text != "" {
					sheet.ColumnContext[col] = text
				}
			}
			sheet.Rows = sheet.Rows[:n-1]
		}
	}
	return sheet
}

var dateLayouts = []string{
	"2006-01-02",
	"2006.01.02",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
}

// parseDate normalizes a header date cell to ISO. Cells may carry a
// formatted date string or a raw Excel serial number.
func parseDate(cell string) (string, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.Format(core.ISODateFormat), true
		}
	}
	if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial > 0 {
		// Excel serial dates count days from 1899-12-30.
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		t := epoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
		return t.Format(core.ISODateFormat), true
	}
	return "", false
}
