package service

import (
	"errors"
	"fmt"
)

// MissingKeyError is raised when a row lacks a required identifying field.
type MissingKeyError struct {
	Sheet string
	Line  int
	Field string
	Row   string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s row %d: missing %s: %s -> %s", e.Sheet, e.Line, e.Field, e.Sheet, e.Row)
}

// UnresolvedReferenceError is raised when a row references an external id or
// label that no earlier sheet produced.
type UnresolvedReferenceError struct {
	Sheet string
	Line  int
	Kind  string
	Ref   string
	Row   string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s row %d: %s %q is not defined: %s -> %s", e.Sheet, e.Line, e.Kind, e.Ref, e.Sheet, e.Row)
}

// OpenError is returned when a file cannot be read as a workbook at all.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open Excel file %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// IsOpenError reports whether err means the file is missing, unreadable or
// not an xlsx workbook.
func IsOpenError(err error) bool {
	var open *OpenError
	return errors.As(err, &open)
}

// IsWorkbookError reports whether err was caused by the workbook content
// rather than by the store or the file system.
func IsWorkbookError(err error) bool {
	var missing *MissingKeyError
	var unresolved *UnresolvedReferenceError
	return errors.As(err, &missing) || errors.As(err, &unresolved)
}

func missingKey(sheet string, line int, field string, row fmt.Stringer) error {
	return &MissingKeyError{Sheet: sheet, Line: line, Field: field, Row: row.String()}
}

func unresolved(sheet string, line int, kind, ref string, row fmt.Stringer) error {
	return &UnresolvedReferenceError{Sheet: sheet, Line: line, Kind: kind, Ref: ref, Row: row.String()}
}
