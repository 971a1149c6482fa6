package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	FILE002 - Not CSV: Only .csv files can be dropped here
//	FILE003 - Read failure: The file could not be read
//	FILE004 - No file: No file was selected
//	FILE005 - Parse failure: The file could not be read as CSV
//
// # Comparison Errors (CMP001-CMP099)
//
//	CMP001 - Files missing: Both CSV files must be uploaded first
//	CMP002 - Compare failure: The comparison could not be completed
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Empty download: There are no differences to download
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Busy: Too many files are being loaded at once
//	SES002 - Session expired: The comparison session is gone
//	SES003 - Bad slot: Files can only be loaded into slot 1 or 2
//	SES004 - Request cancelled
//	SES005 - Request timeout
//	SES006 - Bad request: The request body could not be decoded
//
// # History Errors (DB001-DB099)
//
//	DB001 - Connection refused: The history database is unreachable
//
// # Rate Limiting (RATE001)
//
// # Default Error (ERR000)
//
// Wrapped sentinels are matched with errors.Is first, so file names or paths
// in the message cannot select another entry. Errors from outside the package
// fall back to a case-insensitive strings.Contains on the message. The first
// match wins, so specific patterns come before general ones.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern  string
	sentinel error // matched with errors.Is before any pattern
	msg      UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern:  "file too large",
		sentinel: ErrFileTooLarge,
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file or raise UPLOAD_MAX_FILE_SIZE",
			Code:    "FILE001",
		},
	},
	{
		pattern:  "not a csv file",
		sentinel: ErrNotCSV,
		msg: UserMessage{
			Message: "Only .csv files can be dropped here",
			Action:  "Export the sheet as CSV and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern:  "error reading file",
		sentinel: ErrFileRead,
		msg: UserMessage{
			Message: "Error reading file. Please try again.",
			Action:  "Check that the file is readable and re-upload it",
			Code:    "FILE003",
		},
	},
	{
		pattern:  "no file provided",
		sentinel: ErrNoFile,
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern:  "error parsing csv",
		sentinel: ErrParse,
		msg: UserMessage{
			Message: "Error reading CSV file",
			Action:  "Save the file as UTF-8 CSV and re-upload it",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Comparison Errors (CMP001-CMP002)
	// =========================================================================
	{
		pattern:  "both csv files are required",
		sentinel: ErrFilesMissing,
		msg: UserMessage{
			Message: "Please upload both CSV files",
			Action:  "Load a file into each slot before comparing",
			Code:    "CMP001",
		},
	},
	{
		pattern:  "error comparing files",
		sentinel: ErrCompare,
		msg: UserMessage{
			Message: "Error comparing files",
			Action:  "Re-upload both files and compare again",
			Code:    "CMP002",
		},
	},

	// =========================================================================
	// Export Errors (EXP001)
	// =========================================================================
	{
		pattern:  "no differences to download",
		sentinel: ErrEmptyDownload,
		msg: UserMessage{
			Message: "No differences to download",
			Action:  "Run a comparison that finds differences first",
			Code:    "EXP001",
		},
	},

	// =========================================================================
	// Session Errors (SES001-SES006)
	// =========================================================================
	{
		pattern:  "too many concurrent uploads",
		sentinel: ErrTooManyUploads,
		msg: UserMessage{
			Message: "System is busy loading other files",
			Action:  "Please wait a moment and try again",
			Code:    "SES001",
		},
	},
	{
		pattern:  "session not found",
		sentinel: ErrSessionNotFound,
		msg: UserMessage{
			Message: "Comparison session not found",
			Action:  "The session may have expired. Please upload the files again",
			Code:    "SES002",
		},
	},
	{
		pattern:  "invalid file slot",
		sentinel: ErrInvalidSlot,
		msg: UserMessage{
			Message: "Unknown file slot",
			Action:  "Upload into slot 1 or slot 2",
			Code:    "SES003",
		},
	},
	{
		pattern:  "context canceled",
		sentinel: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "SES004",
		},
	},
	{
		pattern:  "context deadline exceeded",
		sentinel: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "SES005",
		},
	},
	{
		pattern:  "invalid request body",
		sentinel: ErrBadRequest,
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send the sheet name as a form field or a JSON object",
			Code:    "SES006",
		},
	},

	// =========================================================================
	// History Errors (DB001)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the history database",
			Action:  "Comparisons still work; history will resume once it is reachable",
			Code:    "DB001",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the entry for the first wrapped sentinel, then the first
// matching pattern, or the ERR000 fallback.
//
// Example:
//
//	err := fmt.Errorf("load slot 1: %w", ErrEmptyDownload)
//	msg := MapError(err)
//	// msg.Code == "EXP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ep := range errorPatterns {
		if ep.sentinel != nil && errors.Is(err, ep.sentinel) {
			return ep.msg
		}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original error for logging
	User      UserMessage // Display message
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
