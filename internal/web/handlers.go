package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvdiff/internal/core"
	"github.com/JonMunkholm/csvdiff/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// SessionHeader lets API clients carry their session without cookies.
const SessionHeader = "X-Session-ID"

// multipartOverhead is the allowance for form boundaries and headers on top
// of the configured file size.
const multipartOverhead = 1 << 20

// session resolves the caller's session from the header or cookie, creating
// a new one (and setting the cookie) when none is live.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *core.Session {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			id = c.Value
		}
	}

	sess, created := s.service.Session(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     s.cfg.Session.CookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(s.cfg.Session.TTL.Seconds()),
			HttpOnly: true,
			Secure:   s.cfg.Session.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(SessionHeader, sess.ID)
	return sess
}

// handleIndex renders the comparison page for the caller's session.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	runs, err := s.service.History(r.Context())
	if err != nil {
		slog.Error("failed to load history", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	params := templates.PageParams{
		Session:      s.service.Snapshot(sess),
		DefaultSheet: s.cfg.Compare.DefaultSheet,
		History:      runs,
	}
	if err := templates.IndexPage(params).Render(r.Context(), w); err != nil {
		slog.Error("failed to render index", "error", err)
	}
}

// handleUpload loads a multipart file into slot 1 or 2. The form field
// "source" (or query parameter) set to "drop" marks drag-and-drop input.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	slot, err := core.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		s.respondError(w, r, sess.Fail(err))
		return
	}

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, sess.Fail(fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)))
			return
		}
		s.respondError(w, r, sess.Fail(fmt.Errorf("%w: %v", core.ErrNoFile, err)))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, sess.Fail(core.ErrNoFile))
		return
	}
	defer file.Close()

	req := core.LoadRequest{
		Slot:     slot,
		Name:     header.Filename,
		Body:     file,
		FromDrop: strings.EqualFold(r.FormValue("source"), "drop"),
	}
	if err := s.service.LoadFile(r.Context(), sess, req); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondSession(w, r, sess)
}

// compareRequest is the JSON body accepted by the compare endpoint.
type compareRequest struct {
	Sheet string `json:"sheet"`
}

// maxCompareBody bounds the JSON compare body.
const maxCompareBody = 1 << 16

// handleCompare diffs the two loaded files using the "sheet" value from a
// form field or a JSON body.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	sheet, err := compareSheet(r)
	if err != nil {
		s.respondError(w, r, sess.Fail(err))
		return
	}
	if _, err := s.service.Compare(r.Context(), sess, sheet); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondSession(w, r, sess)
}

// compareSheet reads the requested sheet label. An empty JSON body means
// the default sheet.
func compareSheet(r *http.Request) (string, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return r.FormValue("sheet"), nil
	}

	var req compareRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxCompareBody))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %v", core.ErrBadRequest, err)
	}
	return req.Sheet, nil
}

// handleDownloadCSV streams the full report as differences.csv.
func (s *Server) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	report, err := s.service.Download(sess)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(core.ReportFileName))
	if err := report.WriteDelimited(w); err != nil {
		slog.Error("failed to write csv export", "error", err, "session_id", sess.ID)
	}
}

// handleDownloadXLSX returns the full report as a workbook.
func (s *Server) handleDownloadXLSX(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	report, err := s.service.Download(sess)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(core.ReportWorkbookName))
	w.Write(buf.Bytes())
}

// handleSession returns the caller's session state as JSON.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	writeJSON(w, http.StatusOK, s.service.Snapshot(sess))
}

// handleHistory returns the most recent comparison runs.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.History(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if runs == nil {
		runs = []core.RunRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleLoadStatus reports load limiter usage.
func (s *Server) handleLoadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

// handleDropScript serves the drag-and-drop upload script.
func (s *Server) handleDropScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	io.WriteString(w, templates.DropScript)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondSession answers a successful mutation: the snapshot for JSON
// clients, the results fragment for HTMX and a redirect for form posts.
func (s *Server) respondSession(w http.ResponseWriter, r *http.Request, sess *core.Session) {
	snap := s.service.Snapshot(sess)
	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Results(snap).Render(r.Context(), w); err != nil {
			slog.Error("failed to render results", "error", err)
		}
	case wantsJSON(r):
		writeJSON(w, http.StatusOK, snap)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
