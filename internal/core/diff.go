package core

import (
	"strings"
	"unicode"
)

// DefaultSheetName is the tab label used when the caller leaves it blank.
const DefaultSheetName = "Sheet1"

// Difference is one side of a mismatched cell: the value a single file holds
// at a cell where the two files disagree.
type Difference struct {
	FileName      string `json:"file_name"`
	TabName       string `json:"tab_name"`
	CellReference string `json:"cell_reference"`
	Value         string `json:"value"`
}

// Diff compares two grids position by position over their bounding
// rectangle and returns the differences in row-major order.
//
// For each cell whose trimmed values differ, a record is emitted for a
// (then b) only when that side's value is non-empty. Missing rows and columns
// read as "". Both grids must already be parsed; sheet is passed through
// into every record unchanged.
func Diff(a Grid, nameA string, b Grid, nameB string, sheet string) []Difference {
	rows := max(a.Rows(), b.Rows())
	cols := max(a.MaxCols(), b.MaxCols())

	var diffs []Difference
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			valA := trimmedCell(a, row, col)
			valB := trimmedCell(b, row, col)
			if valA == valB {
				continue
			}

			ref := CellRef(row, col)
			if valA != "" {
				diffs = append(diffs, Difference{
					FileName:      nameA,
					TabName:       sheet,
					CellReference: ref,
					Value:         valA,
				})
			}
			if valB != "" {
				diffs = append(diffs, Difference{
					FileName:      nameB,
					TabName:       sheet,
					CellReference: ref,
					Value:         valB,
				})
			}
		}
	}

	return diffs
}

// SheetOrDefault returns sheet, or DefaultSheetName when sheet is blank.
func SheetOrDefault(sheet string) string {
	if sheet == "" {
		return DefaultSheetName
	}
	return sheet
}

func trimmedCell(g Grid, row, col int) string {
	v, _ := g.Cell(row, col)
	return trimCell(v)
}

// trimCell strips surrounding whitespace, including a stray byte order mark.
func trimCell(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
