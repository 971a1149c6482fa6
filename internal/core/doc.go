// Package core provides the comparison engine for csvdiff.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web server, the CLI and the tests all call it the same way.
//
// # Pipeline
//
// Raw text becomes a [Grid] via [ParseCSV]. Two grids plus a sheet label go
// through [Diff], which walks the bounding rectangle of both grids in
// row-major order and emits a [Difference] per file per mismatched cell,
// labelled with [CellRef]. The result is wrapped in a [Report] that offers a
// [Summary], a bounded [Preview] and the delimited export.
//
//	a := core.ParseCSV(before)
//	b := core.ParseCSV(after)
//	report := core.NewReport(core.Diff(a, "before.csv", b, "after.csv", "Sheet1"))
//	fmt.Println(report.Summary().Message)
//
// # Sessions
//
// A [Session] holds the two most recently loaded files and the latest
// report between calls. Failed operations set the session's single error
// message and keep previously loaded state. [Service] adds a session store,
// a concurrency limit on file loads and comparison history.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a code for support reference:
//
//   - FILE001-FILE005: upload and parse errors
//   - CMP001-CMP002: comparison errors
//   - EXP001: export errors
//   - SES001-SES006: session and request errors
//   - DB001: history database errors
//   - RATE001: rate limiting
package core
