// Package templates renders the HTML views of the comparison UI as templ
// components. All user-supplied text goes through templ.EscapeString.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/csvdiff/internal/core"
	"github.com/a-h/templ"
)

// PageParams carries everything the index page shows.
type PageParams struct {
	Session      core.SessionSnapshot
	DefaultSheet string
	History      []core.RunRecord
}

// page accumulates HTML and remembers the first write error.
type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *page) rawf(format string, args ...any) {
	p.raw(fmt.Sprintf(format, args...))
}

func (p *page) component(ctx context.Context, c templ.Component) {
	if p.err != nil {
		return
	}
	p.err = c.Render(ctx, p.w)
}

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f8f9ff;color:#222}
main{max-width:960px;margin:0 auto;padding:24px}
.uploads{display:grid;grid-template-columns:1fr 1fr;gap:16px}
.upload-box{border:2px dashed #667eea;border-radius:8px;padding:16px;background:#fff}
.upload-box.dragover{background:#eef0ff;border-color:#764ba2}
.drop-hint{color:#666;font-size:.9em}
.file-name{color:#764ba2;font-weight:600}
.error{background:#fdecea;color:#a12622;padding:12px;border-radius:6px;margin:16px 0}
.identical{color:#28a745;text-align:center;padding:20px}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{border:1px solid #ddd;padding:6px 8px;text-align:left}
.note{color:#666;text-align:center;padding:10px}
`

// IndexPage renders the full comparison page.
func IndexPage(params PageParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		snap := params.Session

		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<title>CSV Comparison</title><style>` + styles + `</style>`)
		p.raw(`<script src="` + DropScriptPath + `" defer></script></head><body><main>`)
		p.raw(`<h1>CSV Comparison</h1>`)

		p.raw(`<section class="uploads">`)
		uploadBox(p, core.SlotFirst, snap.File1)
		uploadBox(p, core.SlotSecond, snap.File2)
		p.raw(`</section>`)

		sheet := snap.Sheet
		if sheet == "" {
			sheet = params.DefaultSheet
		}
		p.raw(`<form method="post" action="/compare">`)
		p.raw(`<label>Tab name <input type="text" id="sheetName" name="sheet" value="`)
		p.text(sheet)
		p.raw(`"></label> `)
		if snap.Ready {
			p.raw(`<button id="compareBtn" type="submit">Compare</button>`)
		} else {
			p.raw(`<button id="compareBtn" type="submit" disabled>Compare</button>`)
		}
		p.raw(`</form>`)

		if snap.Error != nil {
			p.component(ctx, ErrorAlert(snap.Error.Message, snap.Error.Action, snap.Error.Code))
		}

		p.raw(`<section id="results">`)
		p.component(ctx, Results(snap))
		p.raw(`</section>`)

		if len(params.History) > 0 {
			p.component(ctx, HistoryTable(params.History))
		}

		p.raw(`</main></body></html>`)
		return p.err
	})
}

func uploadBox(p *page, slot core.Slot, info *core.FileInfo) {
	p.rawf(`<form class="upload-box" data-drop-zone method="post" action="/files/%d" enctype="multipart/form-data">`, slot)
	p.rawf(`<h2>File %d</h2>`, slot)
	p.rawf(`<input type="file" id="file%d" name="file" accept=".csv,text/csv"> `, slot)
	p.raw(`<button type="submit">Upload</button>`)
	p.raw(`<p class="drop-hint">or drop a .csv file here</p>`)
	p.rawf(`<p class="file-name" id="fileName%d">`, slot)
	if info != nil {
		p.text(info.Name)
		p.rawf(` <small>(%d rows, %d columns)</small>`, info.Rows, info.Cols)
	}
	p.raw(`</p></form>`)
}

// DropScriptPath is where the server serves DropScript.
const DropScriptPath = "/static/drop.js"

// DropScript posts a file dropped on an upload box with source=drop, which
// limits it to .csv names, then reloads the page to show the new state.
const DropScript = `document.querySelectorAll("[data-drop-zone]").forEach(function (zone) {
  zone.addEventListener("dragover", function (e) {
    e.preventDefault();
    zone.classList.add("dragover");
  });
  zone.addEventListener("dragleave", function () {
    zone.classList.remove("dragover");
  });
  zone.addEventListener("drop", function (e) {
    e.preventDefault();
    zone.classList.remove("dragover");
    var file = e.dataTransfer.files[0];
    if (!file) {
      return;
    }
    var body = new FormData();
    body.append("source", "drop");
    body.append("file", file);
    fetch(zone.action, {method: "POST", body: body, credentials: "same-origin"})
      .finally(function () { window.location.reload(); });
  });
});
`

// Results renders the summary line and preview table of the latest report.
// It renders nothing before the first comparison.
func Results(snap core.SessionSnapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if snap.Summary == nil || snap.Preview == nil {
			return nil
		}
		p := &page{w: w}

		p.raw(`<div id="resultsStats">`)
		p.text(snap.Summary.Message)
		p.raw(`</div><div id="resultsPreview">`)

		if snap.Summary.Identical {
			p.raw(`<p class="identical">&#10003; The two CSV files are identical.</p></div>`)
			return p.err
		}

		p.raw(`<p><a id="downloadBtn" href="/differences.csv">Download differences.csv</a>`)
		p.raw(` &middot; <a href="/differences.xlsx">Download differences.xlsx</a></p>`)
		p.raw(`<table><thead><tr><th>File Name</th><th>Tab Name</th><th>Cell Reference</th><th>Value</th></tr></thead><tbody>`)
		for _, d := range snap.Preview.Records {
			p.raw(`<tr><td>`)
			p.text(d.FileName)
			p.raw(`</td><td>`)
			p.text(d.TabName)
			p.raw(`</td><td>`)
			p.text(d.CellReference)
			p.raw(`</td><td>`)
			p.text(d.Value)
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)

		if snap.Preview.Truncated {
			p.rawf(`<p class="note">Showing first %d of %d differences. Download the full CSV for all results.</p>`,
				snap.Preview.Shown, snap.Preview.Total)
		}
		p.raw(`</div>`)
		return p.err
	})
}

// ErrorAlert renders the single error message slot.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<div id="error" class="error" role="alert"><strong>`)
		p.text(message)
		p.raw(`</strong>`)
		if action != "" {
			p.raw(` `)
			p.text(action)
		}
		if code != "" {
			p.raw(` <small>(`)
			p.text(code)
			p.raw(`)</small>`)
		}
		p.raw(`</div>`)
		return p.err
	})
}

// HistoryTable lists recent comparison runs.
func HistoryTable(runs []core.RunRecord) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<section id="history"><h2>Recent comparisons</h2><table><thead><tr>`)
		p.raw(`<th>When</th><th>File 1</th><th>File 2</th><th>Tab Name</th><th>Differences</th>`)
		p.raw(`</tr></thead><tbody>`)
		for _, run := range runs {
			p.raw(`<tr><td>`)
			p.text(run.CreatedAt.Format("2006-01-02 15:04:05"))
			p.raw(`</td><td>`)
			p.text(run.File1)
			p.raw(`</td><td>`)
			p.text(run.File2)
			p.raw(`</td><td>`)
			p.text(run.Sheet)
			p.rawf(`</td><td>%d</td></tr>`, run.Differences)
		}
		p.raw(`</tbody></table></section>`)
		return p.err
	})
}

// Plain renders the error alert as text for non-HTML clients.
func Plain(msg core.UserMessage) string {
	parts := []string{msg.Message}
	if msg.Action != "" {
		parts = append(parts, msg.Action)
	}
	return strings.Join(parts, ". ") + " (" + msg.Code + ")"
}
