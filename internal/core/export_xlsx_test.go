package core

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReport_WriteXLSX(t *testing.T) {
	diffs := []Difference{
		{FileName: "a.csv", TabName: "Sheet1", CellReference: "B2", Value: "1,000"},
		{FileName: "b.csv", TabName: "Sheet1", CellReference: "B2", Value: `say "hi"`},
	}

	var buf bytes.Buffer
	if err := NewReport(diffs).WriteXLSX(&buf); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); !reflect.DeepEqual(sheets, []string{reportSheet}) {
		t.Errorf("sheets = %v, want [%s]", sheets, reportSheet)
	}

	rows, err := f.GetRows(reportSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}

	want := [][]string{
		reportHeader,
		{"a.csv", "Sheet1", "B2", "1,000"},
		{"b.csv", "Sheet1", "B2", `say "hi"`},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %q, want %q", rows, want)
	}
}

func TestReport_WriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReport(nil).WriteXLSX(&buf); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want header only", len(rows))
	}
}
