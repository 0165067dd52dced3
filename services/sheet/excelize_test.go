package sheetsvc

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mkuprys/gradefold/core"
	testutil "github.com/mkuprys/gradefold/tests"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "9A")

	cells := map[string]interface{}{
		// date row
		"C1": "2025-09-10", "D1": "2025-10-08", "E1": "2025-10-08",
		// header row
		"A2": "First Name", "B2": "Last Name", "C2": "EXT1", "D2": "SD2 P", "E2": "SD2",
		// student rows
		"A3": "Jonas", "B3": "Petraitis", "C3": 7, "D3": 80, "E3": "",
		"A4": "Ona", "B4": "Kazlauskaite", "C4": "?", "D4": 95,
		// trailing context row
		"D5": "Fractions test", "E5": "Fractions test",
	}
	for ref, v := range cells {
		if err := f.SetCellValue("9A", ref, v); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "gradebook.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadSheets(t *testing.T) {
	path := writeWorkbook(t)
	conf := &core.Config{SheetClasses: map[string]string{"9A": "9A"}}
	src := NewExcelSource(path, conf, &testutil.CaptureLogger{})

	sheets, err := src.ReadSheets()
	if err != nil {
		t.Fatalf("ReadSheets() error = %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("sheet count = %d; want 1", len(sheets))
	}
	sheet := sheets[0]
	if sheet.ClassName != "9A" {
		t.Errorf("class = %q; want 9A", sheet.ClassName)
	}

	if got := sheet.ColumnDates["EXT1"]; got != "2025-09-10" {
		t.Errorf("EXT1 date = %q; want 2025-09-10", got)
	}
	if got := sheet.ColumnDates["SD2 P"]; got != "2025-10-08" {
		t.Errorf("SD2 P date = %q; want 2025-10-08", got)
	}

	if len(sheet.Rows) != 2 {
		t.Fatalf("row count = %d; want 2 (context row stripped)", len(sheet.Rows))
	}
	first := sheet.Rows[0]
	if core.CellString(first[core.ColumnFirstName]) != "Jonas" {
		t.Errorf("first name = %v", first[core.ColumnFirstName])
	}
	if v, ok := core.CellScore(first["EXT1"]); !ok || v != 7 {
		t.Errorf("EXT1 = %v, %v; want 7", v, ok)
	}
	if v, ok := core.CellScore(sheet.Rows[1]["EXT1"]); ok {
		t.Errorf("sentinel EXT1 = %v; want rejected", v)
	}

	if got := sheet.Context("SD2"); got != "Fractions test" {
		t.Errorf("SD2 context = %q; want from trailing row", got)
	}
}

func TestReadSheetsSkipsUnmappedSheets(t *testing.T) {
	path := writeWorkbook(t)
	conf := &core.Config{SheetClasses: map[string]string{"9B": "9B"}}
	src := NewExcelSource(path, conf, &testutil.CaptureLogger{})

	sheets, err := src.ReadSheets()
	if err != nil {
		t.Fatalf("ReadSheets() error = %v", err)
	}
	if len(sheets) != 0 {
		t.Errorf("sheet count = %d; want 0", len(sheets))
	}
}

func TestReadSheetsMissingWorkbook(t *testing.T) {
	src := NewExcelSource(filepath.Join(t.TempDir(), "absent.xlsx"), &core.Config{}, &testutil.CaptureLogger{})
	_, err := src.ReadSheets()
	if err == nil {
		t.Fatal("expected error for missing workbook")
	}
	if !core.IsShutdown(err) {
		t.Errorf("error = %v; want a shutdown error", err)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		cell string
		want string
		ok   bool
	}{
		{"2025-09-10", "2025-09-10", true},
		{"2025.09.10", "2025-09-10", true},
		{"09-10-25", "2025-09-10", true},
		{"9/10/25", "2025-09-10", true},
		{"45910", "2025-09-10", true}, // Excel serial
		{"", "", false},
		{"soon", "", false},
	}
	for _, tt := range tests {
		got, ok := parseDate(tt.cell)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseDate(%q) = %q, %v; want %q, %v", tt.cell, got, ok, tt.want, tt.ok)
		}
	}
}
