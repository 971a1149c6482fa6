package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvdiff/internal/config"
)

func testService(t *testing.T, env map[string]string) *Service {
	t.Helper()
	cfg, err := config.LoadFrom(config.MapLookup(env))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	return NewService(cfg, nil)
}

func load(t *testing.T, svc *Service, sess *Session, slot Slot, name, body string) {
	t.Helper()
	err := svc.LoadFile(context.Background(), sess, LoadRequest{Slot: slot, Name: name, Body: strings.NewReader(body)})
	if err != nil {
		t.Fatalf("LoadFile(%s) error = %v", name, err)
	}
}

func TestService_CompareRecordsHistory(t *testing.T) {
	svc := testService(t, nil)
	sess, _ := svc.Session("")

	load(t, svc, sess, SlotFirst, "before.csv", "id,amt\n1,10\n")
	load(t, svc, sess, SlotSecond, "after.csv", "id,amt\n1,12\n")

	ctx := ContextWithClientIP(context.Background(), "192.0.2.7")
	report, err := svc.Compare(ctx, sess, "")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if report.Len() != 2 {
		t.Errorf("Len() = %d, want 2", report.Len())
	}

	runs, err := svc.History(context.Background())
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("History() = %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.File1 != "before.csv" || run.File2 != "after.csv" || run.Differences != 2 {
		t.Errorf("run = %+v", run)
	}
	if run.Sheet != "Sheet1" || run.ClientIP != "192.0.2.7" || run.ID == "" {
		t.Errorf("run = %+v", run)
	}
}

func TestService_CompareUsesConfiguredSheet(t *testing.T) {
	svc := testService(t, map[string]string{"COMPARE_DEFAULT_SHEET": "Ledger"})
	sess, _ := svc.Session("")
	load(t, svc, sess, SlotFirst, "a.csv", "1\n")
	load(t, svc, sess, SlotSecond, "b.csv", "2\n")

	report, err := svc.Compare(context.Background(), sess, "")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if got := report.Records()[0].TabName; got != "Ledger" {
		t.Errorf("TabName = %q, want Ledger", got)
	}
}

func TestService_CompareFailureNotRecorded(t *testing.T) {
	svc := testService(t, nil)
	sess, _ := svc.Session("")

	if _, err := svc.Compare(context.Background(), sess, ""); !errors.Is(err, ErrFilesMissing) {
		t.Fatalf("Compare() error = %v, want ErrFilesMissing", err)
	}
	runs, _ := svc.History(context.Background())
	if len(runs) != 0 {
		t.Errorf("History() = %d runs, want 0", len(runs))
	}
}

func TestService_LoadFileDropExtension(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		drop    bool
		env     map[string]string
		wantErr error
	}{
		{name: "dropped csv", file: "data.csv", drop: true},
		{name: "dropped upper-case csv", file: "DATA.CSV", drop: true},
		{name: "dropped txt", file: "notes.txt", drop: true, wantErr: ErrNotCSV},
		{name: "picked txt", file: "notes.txt", drop: false},
		{
			name: "drop rule disabled",
			file: "notes.txt",
			drop: true,
			env:  map[string]string{"UPLOAD_REQUIRE_CSV_ON_DROP": "false"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testService(t, tt.env)
			sess, _ := svc.Session("")

			err := svc.LoadFile(context.Background(), sess, LoadRequest{
				Slot:     SlotFirst,
				Name:     tt.file,
				Body:     strings.NewReader("a,b\n"),
				FromDrop: tt.drop,
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LoadFile() error = %v, want %v", err, tt.wantErr)
				}
				if sess.File(SlotFirst) != nil {
					t.Error("rejected file was stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if sess.File(SlotFirst) == nil {
				t.Error("file was not stored")
			}
		})
	}
}

func TestService_LoadFileTooLarge(t *testing.T) {
	svc := testService(t, map[string]string{"UPLOAD_MAX_FILE_SIZE": "8"})
	sess, _ := svc.Session("")

	err := svc.LoadFile(context.Background(), sess, LoadRequest{
		Slot: SlotFirst,
		Name: "big.csv",
		Body: strings.NewReader("0123456789,abc\n"),
	})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("LoadFile() error = %v, want ErrFileTooLarge", err)
	}
	if svc.LimiterStatus().Active != 0 {
		t.Error("load slot not released")
	}
}

func TestService_SessionLookup(t *testing.T) {
	svc := testService(t, nil)
	sess, created := svc.Session("")
	if !created {
		t.Fatal("Session(\"\") should create")
	}

	got, err := svc.LookupSession(sess.ID)
	if err != nil || got != sess {
		t.Errorf("LookupSession() = %v, %v", got, err)
	}
	if _, err := svc.LookupSession("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("LookupSession(nope) error = %v, want ErrSessionNotFound", err)
	}
}

func TestHasCSVExtension(t *testing.T) {
	tests := map[string]bool{
		"a.csv":       true,
		"A.CSV":       true,
		"a.Csv":       true,
		"a.csv.txt":   false,
		"csv":         false,
		"archive.tsv": false,
		"":            false,
	}
	for name, want := range tests {
		if got := HasCSVExtension(name); got != want {
			t.Errorf("HasCSVExtension(%q) = %v, want %v", name, got, want)
		}
	}
}
