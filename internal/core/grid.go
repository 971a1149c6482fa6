package core

import "strings"

// Grid is a parsed CSV file: rows of string cells. Rows may be ragged.
// A Grid is never mutated after ParseCSV returns it.
type Grid [][]string

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int {
	return len(g)
}

// MaxCols returns the length of the longest row, or 0 for an empty grid.
func (g Grid) MaxCols() int {
	widest := 0
	for _, row := range g {
		if len(row) > widest {
			widest = len(row)
		}
	}
	return widest
}

// Cell returns the raw value at (row, col). ok is false when the row or
// column does not exist.
func (g Grid) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(g) {
		return "", false
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return "", false
	}
	return r[col], true
}

// ParseCSV turns raw file text into a Grid.
//
// Lines end at LF, with an optional preceding CR. Lines holding only
// whitespace or byte order marks produce no row. Quoting is a plain toggle on every '"' character, so
// a doubled "" inside a quoted field toggles twice instead of producing a
// literal quote. Fields are kept untrimmed; trimming happens at comparison
// time. ParseCSV never fails.
func ParseCSV(text string) Grid {
	lines := strings.Split(text, "\n")
	grid := make(Grid, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if trimCell(line) == "" {
			continue
		}
		grid = append(grid, parseLine(line))
	}

	return grid
}

// parseLine splits one line into fields.
func parseLine(line string) []string {
	var (
		row      []string
		current  strings.Builder
		inQuotes bool
	)

	// '"' and ',' are single bytes in UTF-8, so a byte scan leaves
	// multi-byte runes intact.
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			row = append(row, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	row = append(row, current.String())

	return row
}
