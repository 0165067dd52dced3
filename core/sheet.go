package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Standard identity columns present on every sheet.
const (
	ColumnFirstName = "First Name"
	ColumnLastName  = "Last Name"
	ColumnID        = "ID"
)

// IsStandardColumn reports whether name is one of the identity columns
// that never carry assessment data.
func IsStandardColumn(name string) bool {
	switch name {
	case ColumnFirstName, ColumnLastName, ColumnID:
		return true
	}
	return false
}

type (
	// Row is one student's raw cells, keyed by column name. Values are
	// whatever the reader delivered: string, float64, time.Time or nil.
	Row map[string]interface{}

	// Sheet is one class worth of gradebook data.
	Sheet struct {
		ClassName string
		SheetName string
		Rows      []Row

		// ColumnDates maps column name -> ISO date from the header date row.
		ColumnDates map[string]string
		// ColumnContext maps base column name -> free-text description from
		// the trailing context row.
		ColumnContext map[string]string
	}

	// SheetSource is any service that can deliver gradebook sheets.
	SheetSource interface {
		ReadSheets() ([]Sheet, error)
	}
)

// Date returns the header date for a column, falling back to fallback.
func (s Sheet) Date(column, fallback string) string {
	if d, ok := s.ColumnDates[column]; ok && d != "" {
		return d
	}
	return fallback
}

// Context returns the trailing context text for a base column, if any.
func (s Sheet) Context(column string) string {
	return s.ColumnContext[column]
}

// Sentinel cell values meaning "not applicable / not yet recorded",
// distinct from a real zero score.
func IsSentinel(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "n", "?":
		return true
	}
	return false
}

// CellString renders a raw cell as a trimmed string; nil cells become "".
func CellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case time.Time:
		return val.Format(ISODateFormat)
	default:
		return ""
	}
}

// CellScore coerces a raw cell into a numeric score. It returns false for
// nil cells, sentinel strings, date-typed cells and anything that does not
// parse as a finite number.
func CellScore(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return val, true
	case int:
		return float64(val), true
	case time.Time:
		return 0, false
	case string:
		if IsSentinel(val) {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
