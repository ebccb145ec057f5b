package dashboard

import (
	"cmp"
	"math"
	"sort"
	"strconv"
	"strings"
)

// SortDirection is the active order of a sorted table column.
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Toggle returns the direction a header click moves to.
func (d SortDirection) Toggle() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// ToggleSort flips the sort on column (ascending first) and returns the sorted table.
// Clicking a different column starts it ascending.
func ToggleSort(table Table, column int) Table {
	dir := SortAsc
	if table.SortBy == column {
		dir = table.SortOrder.Toggle()
	}
	return SortTableRows(table, column, dir)
}

// SortTableRows orders rows by column. Ascending is a stable sort of the rows in the
// order they were built; descending is the exact reverse of ascending.
func SortTableRows(table Table, column int, dir SortDirection) Table {
	if column < 0 || (len(table.Columns) > 0 && column >= len(table.Columns)) {
		return table
	}
	rows := append([]Row(nil), table.Rows...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Index < rows[j].Index })
	sort.SliceStable(rows, func(i, j int) bool {
		return compareCells(cellText(rows[i], column), cellText(rows[j], column)) < 0
	})
	if dir == SortDesc {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	table.Rows = rows
	table.SortBy = column
	table.SortOrder = dir
	return table
}

func cellText(row Row, column int) string {
	if column >= len(row.Cells) {
		return ""
	}
	return strings.TrimSpace(row.Cells[column].Text)
}

// Cell classes in ascending order: numbers sort before dates, dates before text.
const (
	classNumber = iota
	classDate
	classText
)

// compareCells ranks cells by class first and compares within a class: numbers by
// value, dates chronologically, text lexicographically.
func compareCells(a, b string) int {
	ac, bc := classifyCell(a), classifyCell(b)
	if ac != bc {
		return cmp.Compare(ac, bc)
	}
	switch ac {
	case classNumber:
		an, _ := parseNumericCell(a)
		bn, _ := parseNumericCell(b)
		return cmp.Compare(an, bn)
	case classDate:
		at, _ := parseDate(a)
		bt, _ := parseDate(b)
		return at.Compare(bt)
	default:
		return strings.Compare(a, b)
	}
}

func classifyCell(s string) int {
	if _, ok := parseNumericCell(s); ok {
		return classNumber
	}
	if _, ok := parseDate(s); ok {
		return classDate
	}
	return classText
}

// parseNumericCell strips $ , % + and accepts a trailing K/M/B multiplier.
func parseNumericCell(s string) (float64, bool) {
	s = strings.NewReplacer("$", "", ",", "", "%", "", "+", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'K':
		mult = 1e3
	case 'M':
		mult = 1e6
	case 'B':
		mult = 1e9
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v * mult, true
}
