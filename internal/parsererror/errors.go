// Package parsererror defines the fatal error taxonomy of the segmentation
// pipeline. Non-fatal irregularities (missing record numbers, unresolved
// month names, cross-year headers, header-less records) are reported as
// values by the stage that found them and never surface here.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrUnanchored is the sentinel behind every UnanchoredInputError.
var ErrUnanchored = errors.New("no anchor year")

// UnanchoredInputError reports text that cannot be segmented because no year
// is known when the first year-less date header is reached.
type UnanchoredInputError struct {
	FilePath string
	Header   string
	Msg      string
}

func (e *UnanchoredInputError) Error() string {
	src := e.FilePath
	if src == "" {
		src = "<text>"
	}
	if e.Header != "" {
		return fmt.Sprintf("unanchored input in %s: %s (header %q)", src, e.Msg, e.Header)
	}
	return fmt.Sprintf("unanchored input in %s: %s", src, e.Msg)
}

func (e *UnanchoredInputError) Unwrap() error {
	return ErrUnanchored
}

// IsUnanchored reports whether err is, or wraps, an unanchored-input error.
func IsUnanchored(err error) bool {
	return errors.Is(err, ErrUnanchored)
}

// FilenameError represents a file whose name does not carry the temporal
// scope a stage needs (a year stem like 1691.txt or a year-month stem like
// 1691-02.txt).
type FilenameError struct {
	FilePath string
	Expected string
}

func (e *FilenameError) Error() string {
	return fmt.Sprintf("cannot derive %s from file name '%s'", e.Expected, e.FilePath)
}

// FileError represents a file-system failure on one unit of work.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
