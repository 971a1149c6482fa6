package core

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReportWorkbookName is the download name of the spreadsheet export.
const ReportWorkbookName = "differences.xlsx"

// reportSheet is the single tab the spreadsheet export writes to.
const reportSheet = "Differences"

// WriteXLSX writes the report as a one-sheet workbook with the same four
// columns as the delimited export.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(reportSheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]interface{}, len(reportHeader))
	for i, h := range reportHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, d := range r.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{d.FileName, d.TabName, d.CellReference, d.Value}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush workbook: %w", err)
	}

	return f.Write(w)
}
