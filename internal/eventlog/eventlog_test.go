package eventlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	f := NewFile(path)

	if err := f.Append("2026-01-01 12:00:00 - System Started\n"); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := f.Append("2026-01-01 12:00:05 - System Armed - Away Mode\n"); err != nil {
		t.Fatalf("second append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	want := "2026-01-01 12:00:00 - System Started\n2026-01-01 12:00:05 - System Armed - Away Mode\n"
	if string(data) != want {
		t.Errorf("log contents:\ngot  %q\nwant %q", string(data), want)
	}
}

func TestFileAppendFailsWithoutDirectory(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "missing", "events.log"))
	if err := f.Append("line\n"); err == nil {
		t.Fatal("expected error appending into a missing directory")
	}
}

func TestMemoryHelpers(t *testing.T) {
	m := &Memory{}
	if m.Last() != "" || m.Contains("anything") {
		t.Error("empty memory log should be empty")
	}

	if err := m.Append("a - Door Opened\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := m.Append("b - ALARM TRIGGERED\n"); err != nil {
		t.Fatalf("append: %v", err)
	}

	if !m.Contains("Door Opened") {
		t.Error("Contains should find Door Opened")
	}
	if m.Last() != "b - ALARM TRIGGERED\n" {
		t.Errorf("Last: got %q", m.Last())
	}

	m.Err = errors.New("card removed")
	if err := m.Append("c\n"); err == nil {
		t.Error("expected injected error")
	}
	if len(m.Lines) != 2 {
		t.Errorf("failed append must not store, got %d lines", len(m.Lines))
	}
}
