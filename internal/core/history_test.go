package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMemoryHistory(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(3)

	for i := 1; i <= 5; i++ {
		if err := h.Record(ctx, RunRecord{ID: fmt.Sprintf("run-%d", i)}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		limit int
		want  []string
	}{
		{limit: 0, want: []string{"run-5", "run-4", "run-3"}},
		{limit: 2, want: []string{"run-5", "run-4"}},
		{limit: 10, want: []string{"run-5", "run-4", "run-3"}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit %d", tt.limit), func(t *testing.T) {
			runs, err := h.Recent(ctx, tt.limit)
			if err != nil {
				t.Fatalf("Recent() error = %v", err)
			}
			if len(runs) != len(tt.want) {
				t.Fatalf("Recent() returned %d runs, want %d", len(runs), len(tt.want))
			}
			for i, id := range tt.want {
				if runs[i].ID != id {
					t.Errorf("runs[%d].ID = %q, want %q", i, runs[i].ID, id)
				}
			}
		})
	}
}

// fakeDB records statements and serves canned rows.
type fakeDB struct {
	execSQL  []string
	execArgs [][]any
	execErr  error

	querySQL  string
	queryArgs []any
	rows      [][]any
	queryErr  error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	f.querySQL = sql
	f.queryArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{data: f.rows, pos: -1}, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d dest for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int32:
			*p = row[i].(int32)
		case *time.Time:
			*p = row[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported dest %T", d)
		}
	}
	return nil
}

func TestPGHistory_EnsureSchema(t *testing.T) {
	db := &fakeDB{}
	if err := NewPGHistory(db).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if len(db.execSQL) != 1 || !strings.Contains(db.execSQL[0], "CREATE TABLE IF NOT EXISTS comparison_runs") {
		t.Errorf("exec = %v, want create table", db.execSQL)
	}
}

func TestPGHistory_Record(t *testing.T) {
	db := &fakeDB{}
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := RunRecord{
		ID: "r1", File1: "a.csv", File2: "b.csv", Sheet: "Sheet1",
		Differences: 7, ClientIP: "10.0.0.1", CreatedAt: created,
	}

	if err := NewPGHistory(db).Record(context.Background(), run); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	args := db.execArgs[0]
	if len(args) != 7 {
		t.Fatalf("got %d args, want 7", len(args))
	}
	if args[0] != "r1" || args[4] != int32(7) || args[6] != created {
		t.Errorf("args = %v", args)
	}
}

func TestPGHistory_RecordError(t *testing.T) {
	db := &fakeDB{execErr: errors.New("dial tcp: connection refused")}
	err := NewPGHistory(db).Record(context.Background(), RunRecord{ID: "r1"})
	if err == nil || MapError(err).Code != "DB001" {
		t.Errorf("Record() error = %v, want DB001 mapping", err)
	}
}

func TestPGHistory_Recent(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: [][]any{
		{"r2", "a.csv", "b.csv", "Sheet1", int32(3), "", created.Add(time.Minute)},
		{"r1", "a.csv", "c.csv", "Ledger", int32(0), "10.0.0.1", created},
	}}

	runs, err := NewPGHistory(db).Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "r2" || runs[0].Differences != 3 {
		t.Errorf("runs[0] = %+v", runs[0])
	}
	if runs[1].Sheet != "Ledger" || runs[1].ClientIP != "10.0.0.1" {
		t.Errorf("runs[1] = %+v", runs[1])
	}
	if db.queryArgs[0] != DefaultHistoryCapacity {
		t.Errorf("limit arg = %v, want default %d", db.queryArgs[0], DefaultHistoryCapacity)
	}
}

func TestPGHistory_RecentQueryError(t *testing.T) {
	db := &fakeDB{queryErr: errors.New("boom")}
	if _, err := NewPGHistory(db).Recent(context.Background(), 5); err == nil {
		t.Error("Recent() expected error")
	}
}
