package eventlog

import "strings"

// Memory is an in-memory Appender for tests.
type Memory struct {
	Lines []string

	// Err, if set, is returned by Append.
	Err error
}

// Append stores the line.
func (m *Memory) Append(line string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Lines = append(m.Lines, line)
	return nil
}

// Contains reports whether any stored line contains substr.
func (m *Memory) Contains(substr string) bool {
	for _, line := range m.Lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// Last returns the most recent line, or "" if the log is empty.
func (m *Memory) Last() string {
	if len(m.Lines) == 0 {
		return ""
	}
	return m.Lines[len(m.Lines)-1]
}
