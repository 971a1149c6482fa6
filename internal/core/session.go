package core

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

// Slot identifies one of the two files being compared.
type Slot int

const (
	SlotFirst  Slot = 1
	SlotSecond Slot = 2
)

// ParseSlot converts "1" or "2" to a Slot.
func ParseSlot(s string) (Slot, error) {
	n, err := strconv.Atoi(s)
	if err != nil || (n != int(SlotFirst) && n != int(SlotSecond)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
	return Slot(n), nil
}

// LoadedFile is a parsed upload held in a slot.
type LoadedFile struct {
	Name     string
	Grid     Grid
	LoadedAt time.Time
}

// FileInfo describes a loaded file for display.
type FileInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// SessionSnapshot is a read-only view of a session for rendering.
type SessionSnapshot struct {
	ID      string       `json:"id"`
	File1   *FileInfo    `json:"file1,omitempty"`
	File2   *FileInfo    `json:"file2,omitempty"`
	Ready   bool         `json:"ready"`
	Sheet   string       `json:"sheet,omitempty"`
	Summary *Summary     `json:"summary,omitempty"`
	Preview *Preview     `json:"preview,omitempty"`
	Error   *UserMessage `json:"error,omitempty"`
}

// Session holds the state between calls for one user: the two most recently
// parsed files, the latest report and a single error message slot.
//
// Every failed operation replaces the error message and leaves the loaded
// files and the previous report untouched.
type Session struct {
	ID string

	mu       sync.Mutex
	files    [2]*LoadedFile
	report   *Report
	sheet    string
	lastErr  error
	lastUsed time.Time
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	return &Session{ID: id, lastUsed: time.Now()}
}

// Load reads r fully as UTF-8, parses it and stores the grid in slot,
// replacing whatever the slot held. maxSize > 0 caps the upload size.
func (s *Session) Load(slot Slot, name string, r io.Reader, maxSize int64) error {
	text, err := ReadText(r, maxSize)
	if err != nil {
		return s.Fail(err)
	}
	return s.LoadText(slot, name, text)
}

// LoadText parses already-read text into slot.
func (s *Session) LoadText(slot Slot, name, text string) error {
	if slot != SlotFirst && slot != SlotSecond {
		return s.Fail(fmt.Errorf("%w: %d", ErrInvalidSlot, slot))
	}

	grid, err := parseSafely(text)
	if err != nil {
		return s.Fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[slot-1] = &LoadedFile{Name: name, Grid: grid, LoadedAt: time.Now()}
	s.lastUsed = time.Now()
	return nil
}

// Ready reports whether both slots hold a file.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[0] != nil && s.files[1] != nil
}

// File returns the file loaded in slot, or nil.
func (s *Session) File(slot Slot) *LoadedFile {
	if slot != SlotFirst && slot != SlotSecond {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[slot-1]
}

// Compare diffs the two loaded files and replaces the stored report.
// A blank sheet label becomes DefaultSheetName.
func (s *Session) Compare(sheet string) (*Report, error) {
	s.mu.Lock()
	a, b := s.files[0], s.files[1]
	s.mu.Unlock()

	if a == nil || b == nil {
		return nil, s.Fail(ErrFilesMissing)
	}

	sheet = SheetOrDefault(sheet)
	report, err := compareSafely(a, b, sheet)
	if err != nil {
		return nil, s.Fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
	s.sheet = sheet
	s.lastErr = nil
	s.lastUsed = time.Now()
	return report, nil
}

// Report returns the latest report, or nil if no comparison has run.
func (s *Session) Report() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(time.Now())
	return s.report
}

// Download returns the latest report for export. It fails with
// ErrEmptyDownload when there is nothing to export.
func (s *Session) Download() (*Report, error) {
	s.mu.Lock()
	report := s.report
	s.mu.Unlock()

	if report.Len() == 0 {
		return nil, s.Fail(ErrEmptyDownload)
	}
	return report, nil
}

// Fail records err as the session's current error and returns it.
func (s *Session) Fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.lastUsed = time.Now()
	return err
}

// Err returns the error currently shown to the user, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Touch marks the session as used at t. lastUsed never moves backwards.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(t)
}

func (s *Session) touchLocked(t time.Time) {
	if t.After(s.lastUsed) {
		s.lastUsed = t
	}
}

// LastUsed returns when the session was last touched.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Snapshot returns a display view with a preview of at most previewLimit
// records.
func (s *Session) Snapshot(previewLimit int) SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(time.Now())

	snap := SessionSnapshot{
		ID:    s.ID,
		File1: fileInfo(s.files[0]),
		File2: fileInfo(s.files[1]),
		Ready: s.files[0] != nil && s.files[1] != nil,
		Sheet: s.sheet,
	}
	if s.report != nil {
		summary := s.report.Summary()
		preview := s.report.Preview(previewLimit)
		snap.Summary = &summary
		snap.Preview = &preview
	}
	if s.lastErr != nil {
		msg := MapError(s.lastErr)
		snap.Error = &msg
	}
	return snap
}

func fileInfo(f *LoadedFile) *FileInfo {
	if f == nil {
		return nil
	}
	return &FileInfo{Name: f.Name, Rows: f.Grid.Rows(), Cols: f.Grid.MaxCols()}
}

// parseSafely runs ParseCSV and converts a panic into ErrParse.
func parseSafely(text string) (grid Grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()
	return ParseCSV(text), nil
}

// compareSafely runs Diff and converts a panic into ErrCompare.
func compareSafely(a, b *LoadedFile, sheet string) (report *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCompare, r)
		}
	}()
	return NewReport(Diff(a.Grid, a.Name, b.Grid, b.Name, sheet)), nil
}
