package core

import "errors"

// Error kinds surfaced to users. Callers wrap these with fmt.Errorf("%w")
// and test with errors.Is; MapError turns them into display text.
var (
	// ErrFileRead is an I/O failure while reading an uploaded file.
	ErrFileRead = errors.New("error reading file")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNotCSV is returned when a dropped file lacks the .csv extension.
	ErrNotCSV = errors.New("not a csv file")

	// ErrNoFile is returned when a request carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrParse is an unexpected failure while building a grid.
	ErrParse = errors.New("error parsing csv")

	// ErrCompare is an unexpected failure while diffing two grids.
	ErrCompare = errors.New("error comparing files")

	// ErrFilesMissing is returned when a comparison runs before both
	// slots hold a parsed file.
	ErrFilesMissing = errors.New("both csv files are required")

	// ErrEmptyDownload is returned when an export is requested and the
	// last comparison produced no differences.
	ErrEmptyDownload = errors.New("no differences to download")

	// ErrInvalidSlot is returned for a file slot other than 1 or 2.
	ErrInvalidSlot = errors.New("invalid file slot")

	// ErrSessionNotFound is returned for an unknown or expired session ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBadRequest is returned when a request body cannot be decoded.
	ErrBadRequest = errors.New("invalid request body")
)
