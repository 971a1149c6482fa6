package core

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b Grid
		want []Difference
	}{
		{
			name: "identical grids",
			a:    Grid{{"a", "b"}, {"c", "d"}},
			b:    Grid{{"a", "b"}, {"c", "d"}},
			want: nil,
		},
		{
			name: "both empty",
			a:    Grid{},
			b:    Grid{},
			want: nil,
		},
		{
			name: "two-sided difference keeps file order",
			a:    Grid{{"x", "1"}},
			b:    Grid{{"x", "2"}},
			want: []Difference{
				{FileName: "a.csv", TabName: "Sheet1", CellReference: "B1", Value: "1"},
				{FileName: "b.csv", TabName: "Sheet1", CellReference: "B1", Value: "2"},
			},
		},
		{
			name: "whitespace-only difference ignored",
			a:    Grid{{" x ", "\ty"}},
			b:    Grid{{"x", "y  "}},
			want: nil,
		},
		{
			name: "byte order mark ignored",
			a:    Grid{{"\uFEFFid", "v"}},
			b:    Grid{{"id", "v"}},
			want: nil,
		},
		{
			name: "extra row only in b",
			a:    Grid{{"h"}},
			b:    Grid{{"h"}, {"new", ""}},
			want: []Difference{
				{FileName: "b.csv", TabName: "Sheet1", CellReference: "A2", Value: "new"},
			},
		},
		{
			name: "extra column only in a",
			a:    Grid{{"h", "extra"}},
			b:    Grid{{"h"}},
			want: []Difference{
				{FileName: "a.csv", TabName: "Sheet1", CellReference: "B1", Value: "extra"},
			},
		},
		{
			name: "empty versus value emits one side",
			a:    Grid{{""}},
			b:    Grid{{"v"}},
			want: []Difference{
				{FileName: "b.csv", TabName: "Sheet1", CellReference: "A1", Value: "v"},
			},
		},
		{
			name: "row-major order",
			a:    Grid{{"1", "2"}, {"3", "4"}},
			b:    Grid{{"1", "x"}, {"y", "4"}},
			want: []Difference{
				{FileName: "a.csv", TabName: "Sheet1", CellReference: "B1", Value: "2"},
				{FileName: "b.csv", TabName: "Sheet1", CellReference: "B1", Value: "x"},
				{FileName: "a.csv", TabName: "Sheet1", CellReference: "A2", Value: "3"},
				{FileName: "b.csv", TabName: "Sheet1", CellReference: "A2", Value: "y"},
			},
		},
		{
			name: "values are reported trimmed",
			a:    Grid{{"  left  "}},
			b:    Grid{{" right"}},
			want: []Difference{
				{FileName: "a.csv", TabName: "Sheet1", CellReference: "A1", Value: "left"},
				{FileName: "b.csv", TabName: "Sheet1", CellReference: "A1", Value: "right"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.a, "a.csv", tt.b, "b.csv", "Sheet1")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDiff_Reflexive(t *testing.T) {
	grids := []Grid{
		ParseCSV("id,name\n1,alice\n2,bob\n"),
		ParseCSV("a\nb,c,d\n,,\n"),
		ParseCSV(`"q,1",x` + "\n"),
	}
	for _, g := range grids {
		if got := Diff(g, "a", g, "b", "S"); len(got) != 0 {
			t.Errorf("Diff(g, g) = %+v, want no differences", got)
		}
	}
}

func TestDiff_Symmetric(t *testing.T) {
	a := ParseCSV("id,amount\n1,10\n2,20\n3,30\n")
	b := ParseCSV("id,amount,note\n1,11\n2,20,late\n")

	ab := Diff(a, "a", b, "b", "S")
	ba := Diff(b, "b", a, "a", "S")

	if len(ab) != len(ba) {
		t.Fatalf("len(Diff(a,b)) = %d, len(Diff(b,a)) = %d", len(ab), len(ba))
	}

	// The same set of records exists both ways; only per-cell order flips.
	count := map[Difference]int{}
	for _, d := range ab {
		count[d]++
	}
	for _, d := range ba {
		count[d]--
	}
	for d, n := range count {
		if n != 0 {
			t.Errorf("record %+v imbalance %d", d, n)
		}
	}
}

func TestDiff_SheetLabelPassThrough(t *testing.T) {
	got := Diff(Grid{{"1"}}, "a", Grid{{"2"}}, "b", "  Q3 ledger ")
	for _, d := range got {
		if d.TabName != "  Q3 ledger " {
			t.Errorf("TabName = %q, want label passed through unchanged", d.TabName)
		}
	}
}

func TestSheetOrDefault(t *testing.T) {
	if got := SheetOrDefault(""); got != DefaultSheetName {
		t.Errorf("SheetOrDefault(\"\") = %q, want %q", got, DefaultSheetName)
	}
	if got := SheetOrDefault("Ledger"); got != "Ledger" {
		t.Errorf("SheetOrDefault(\"Ledger\") = %q, want %q", got, "Ledger")
	}
}
