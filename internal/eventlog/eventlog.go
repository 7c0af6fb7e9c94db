// Package eventlog persists the panel's append-only event history.
package eventlog

import (
	"fmt"
	"os"
)

// Appender writes one pre-formatted event line. The caller supplies the
// complete line, timestamp and trailing newline included. Failures are
// non-fatal: the panel keeps running without persistence.
type Appender interface {
	Append(line string) error
}

// File appends lines to a plain text file. Every append opens and
// closes the file so a removable card can come and go between events.
type File struct {
	path string
}

// NewFile creates a File appender for the given path. The file is not
// touched until the first append.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the log file path.
func (f *File) Path() string {
	return f.path
}

// Append writes one line to the end of the log.
func (f *File) Append(line string) error {
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}

	_, werr := file.WriteString(line)
	cerr := file.Close()
	if werr != nil {
		return fmt.Errorf("append event: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("close event log: %w", cerr)
	}
	return nil
}
