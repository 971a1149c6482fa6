package core

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/csvdiff/internal/config"
	"github.com/JonMunkholm/csvdiff/internal/logging"
	"github.com/google/uuid"
)

// LoadRequest describes one uploaded file.
type LoadRequest struct {
	Slot Slot
	Name string
	Body io.Reader

	// FromDrop marks files that arrived via drag-and-drop; only those are
	// held to the .csv extension rule.
	FromDrop bool
}

// Service ties sessions, the load limiter and run history together for the
// front ends. The comparison logic itself lives in the pure functions
// ParseCSV, Diff and Report.
type Service struct {
	cfg      *config.Config
	sessions *SessionStore
	limiter  *LoadLimiter
	history  HistoryStore
}

// NewService creates a Service. A nil history keeps runs in memory.
func NewService(cfg *config.Config, history HistoryStore) *Service {
	if history == nil {
		history = NewMemoryHistory(DefaultHistoryCapacity)
	}
	return &Service{
		cfg:      cfg,
		sessions: NewSessionStore(cfg.Session.TTL),
		limiter:  NewLoadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		history:  history,
	}
}

// Session returns the session for id, creating one if needed.
func (s *Service) Session(id string) (*Session, bool) {
	return s.sessions.GetOrCreate(id)
}

// LookupSession returns an existing session or ErrSessionNotFound.
func (s *Service) LookupSession(id string) (*Session, error) {
	return s.sessions.Get(id)
}

// LoadFile reads, parses and stores one upload in sess.
func (s *Service) LoadFile(ctx context.Context, sess *Session, req LoadRequest) error {
	log := logging.WithFields(ctx, "session_id", sess.ID, "slot", int(req.Slot), "file", req.Name)

	if req.FromDrop && s.cfg.Upload.RequireCSVOnDrop && !HasCSVExtension(req.Name) {
		log.Warn("rejected dropped file", "reason", "extension")
		return sess.Fail(fmt.Errorf("%w: %s", ErrNotCSV, req.Name))
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		log.Warn("load slot unavailable", "error", err)
		return sess.Fail(err)
	}
	defer s.limiter.Release()

	start := time.Now()
	if err := sess.Load(req.Slot, req.Name, req.Body, s.cfg.Upload.MaxFileSize); err != nil {
		log.Error("file load failed", "error", err)
		return err
	}

	f := sess.File(req.Slot)
	log.Info("file loaded",
		"rows", f.Grid.Rows(),
		"cols", f.Grid.MaxCols(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Compare runs a comparison in sess and records it in the history.
// A blank sheet falls back to the configured default sheet label.
func (s *Service) Compare(ctx context.Context, sess *Session, sheet string) (*Report, error) {
	if sheet == "" {
		sheet = s.cfg.Compare.DefaultSheet
	}
	log := logging.WithFields(ctx, "session_id", sess.ID, "sheet", sheet)

	start := time.Now()
	report, err := sess.Compare(sheet)
	if err != nil {
		log.Warn("comparison failed", "error", err)
		return nil, err
	}

	log.Info("comparison completed",
		"differences", report.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	run := RunRecord{
		ID:          uuid.NewString(),
		File1:       sess.File(SlotFirst).Name,
		File2:       sess.File(SlotSecond).Name,
		Sheet:       sheet,
		Differences: report.Len(),
		ClientIP:    ClientIPFromContext(ctx),
		CreatedAt:   time.Now().UTC(),
	}
	// History is best effort; a failed write never fails the comparison.
	if err := s.history.Record(ctx, run); err != nil {
		log.Error("failed to record comparison run", "error", err)
	}

	return report, nil
}

// Download returns the report to export, or ErrEmptyDownload.
func (s *Service) Download(sess *Session) (*Report, error) {
	return sess.Download()
}

// Snapshot renders sess with the configured preview limit.
func (s *Service) Snapshot(sess *Session) SessionSnapshot {
	return sess.Snapshot(s.cfg.Compare.PreviewLimit)
}

// History returns the most recent comparison runs.
func (s *Service) History(ctx context.Context) ([]RunRecord, error) {
	return s.history.Recent(ctx, s.cfg.Compare.HistoryLimit)
}

// StartSessionSweeper expires idle sessions until ctx is cancelled.
func (s *Service) StartSessionSweeper(ctx context.Context) {
	s.sessions.StartSweeper(ctx, s.cfg.Session.SweepInterval)
}

// LimiterStatus reports load limiter usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForLoads blocks until in-flight loads finish or ctx is done.
func (s *Service) WaitForLoads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// HasCSVExtension reports whether name ends in .csv, ignoring case.
func HasCSVExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
