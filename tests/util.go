// Package testutil provides helpers shared by package tests.
package testutil

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// CaptureLogger records every log call for later assertions.
type CaptureLogger struct {
	Entries []LogEntry
}

func (l *CaptureLogger) Enable(bool) {}

func (l *CaptureLogger) Debug(msg string, args ...interface{}) { l.add("DEBUG", msg, args) }
func (l *CaptureLogger) Info(msg string, args ...interface{})  { l.add("INFO", msg, args) }
func (l *CaptureLogger) Warn(msg string, args ...interface{})  { l.add("WARN", msg, args) }
func (l *CaptureLogger) Error(msg string, args ...interface{}) { l.add("ERROR", msg, args) }

func (l *CaptureLogger) add(level, msg string, args []interface{}) {
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

// Has reports whether a message containing substr was logged at level.
func (l *CaptureLogger) Has(level, substr string) bool {
	for _, e := range l.Entries {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

// Reset drops all captured entries.
func (l *CaptureLogger) Reset() {
	l.Entries = nil
}

// Diff renders a unified diff of two documents for test failure output.
func Diff(want, got string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}
