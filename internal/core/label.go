package core

import "strconv"

// ColumnLabel converts a 1-based column number to its spreadsheet label
// (1 -> "A", 26 -> "Z", 27 -> "AA"). This is bijective base-26: there is no
// zero digit, so each step decrements before taking the remainder.
// Numbers below 1 yield "".
func ColumnLabel(colNum int) string {
	var buf [16]byte
	i := len(buf)

	for n := colNum; n > 0; n /= 26 {
		n--
		i--
		buf[i] = byte('A' + n%26)
	}

	return string(buf[i:])
}

// CellRef returns the spreadsheet reference for 0-based coordinates,
// e.g. CellRef(11, 1) == "B12".
func CellRef(row, col int) string {
	return ColumnLabel(col+1) + strconv.Itoa(row+1)
}
