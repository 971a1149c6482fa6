package templates

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/csvdiff/internal/core"
	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func snapshotFor(t *testing.T, a, b string) core.SessionSnapshot {
	t.Helper()
	sess := core.NewSession("test")
	if err := sess.LoadText(core.SlotFirst, "a.csv", a); err != nil {
		t.Fatal(err)
	}
	if err := sess.LoadText(core.SlotSecond, "b.csv", b); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Compare(""); err != nil {
		t.Fatal(err)
	}
	return sess.Snapshot(core.DefaultPreviewLimit)
}

func TestResults(t *testing.T) {
	t.Run("no comparison yet", func(t *testing.T) {
		if got := render(t, Results(core.SessionSnapshot{})); got != "" {
			t.Errorf("Results() = %q, want empty", got)
		}
	})

	t.Run("identical", func(t *testing.T) {
		got := render(t, Results(snapshotFor(t, "a\n", "a\n")))
		if !strings.Contains(got, "No differences found!") {
			t.Errorf("missing summary: %s", got)
		}
		if !strings.Contains(got, "The two CSV files are identical.") {
			t.Errorf("missing identical note: %s", got)
		}
		if strings.Contains(got, "<table>") {
			t.Error("identical result should not render a table")
		}
	})

	t.Run("differences escaped", func(t *testing.T) {
		got := render(t, Results(snapshotFor(t, `<img src=x onerror=alert(1)>`+"\n", "ok\n")))
		if strings.Contains(got, "<img") {
			t.Errorf("unescaped markup in output: %s", got)
		}
		if !strings.Contains(got, "&lt;img") {
			t.Errorf("escaped value missing: %s", got)
		}
		for _, col := range []string{"File Name", "Tab Name", "Cell Reference", "Value"} {
			if !strings.Contains(got, col) {
				t.Errorf("missing column %q", col)
			}
		}
	})

	t.Run("truncated preview", func(t *testing.T) {
		var a, b strings.Builder
		for i := 0; i < 75; i++ {
			fmt.Fprintf(&a, "a%d\n", i)
			fmt.Fprintf(&b, "b%d\n", i)
		}
		got := render(t, Results(snapshotFor(t, a.String(), b.String())))
		if !strings.Contains(got, "150 difference(s) found") {
			t.Errorf("missing summary: %s", got)
		}
		if !strings.Contains(got, "Showing first 100 of 150 differences.") {
			t.Errorf("missing truncation note")
		}
		if n := strings.Count(got, "<tr><td>"); n != 100 {
			t.Errorf("rendered %d rows, want 100", n)
		}
	})
}

func TestIndexPage(t *testing.T) {
	sess := core.NewSession("test")
	sess.LoadText(core.SlotFirst, `<b>q1</b>.csv`, "x\n")

	got := render(t, IndexPage(PageParams{
		Session:      sess.Snapshot(100),
		DefaultSheet: "Sheet1",
		History: []core.RunRecord{
			{File1: "a.csv", File2: "b.csv", Sheet: "Sheet1", Differences: 4, CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		},
	}))

	if !strings.Contains(got, "&lt;b&gt;q1&lt;/b&gt;.csv") {
		t.Error("file name not escaped")
	}
	if !strings.Contains(got, `value="Sheet1"`) {
		t.Error("sheet input missing default value")
	}
	if !strings.Contains(got, "disabled") {
		t.Error("compare button should be disabled")
	}
	if !strings.Contains(got, "2026-01-02 03:04:05") {
		t.Error("history row missing")
	}
	if strings.Count(got, "data-drop-zone") != 2 {
		t.Error("both upload boxes should accept drops")
	}
	if !strings.Contains(got, `<script src="`+DropScriptPath+`"`) {
		t.Error("drop script not linked")
	}
}

func TestDropScriptMarksSource(t *testing.T) {
	for _, want := range []string{`"source", "drop"`, `"file", file`, "[data-drop-zone]", "zone.action"} {
		if !strings.Contains(DropScript, want) {
			t.Errorf("DropScript missing %q", want)
		}
	}
}

func TestErrorAlert(t *testing.T) {
	got := render(t, ErrorAlert("No differences to download", "Run a comparison first", "EXP001"))
	for _, want := range []string{`role="alert"`, "No differences to download", "Run a comparison first", "EXP001"} {
		if !strings.Contains(got, want) {
			t.Errorf("ErrorAlert() missing %q: %s", want, got)
		}
	}
}

func TestPlain(t *testing.T) {
	got := Plain(core.UserMessage{Message: "Too many requests", Action: "Wait", Code: "RATE001"})
	if got != "Too many requests. Wait (RATE001)" {
		t.Errorf("Plain() = %q", got)
	}
}
