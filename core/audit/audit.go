// Package audit writes a newline delimited JSON record of every command
// line the shell executes, for accounting on shared machines.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// Entry is one executed command line.
type Entry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`
	Dir             string `json:"dir,omitempty"`
	Command         string `json:"command"`
	Status          int    `json:"status"`
}

// Recorder is a callback that stores entries in an external datastore.
type Recorder func(e *Entry) error

// Logger captures command logs through a Recorder.
type Logger struct {
	Record Recorder
}

// NewJSONLinesLogger creates a Logger that exports entries in newline
// delimited JSON object format.
func NewJSONLinesLogger(w io.Writer) *Logger {
	return &Logger{
		Record: func(e *Entry) error {
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(data))
			return err
		},
	}
}

// Discard returns a Logger that drops every entry, so callers never need a
// nil check.
func Discard() *Logger {
	return &Logger{Record: func(*Entry) error { return nil }}
}

// NewSession creates a logger with an attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// SessionLogger logs entries with a shared session ID.
type SessionLogger struct {
	logger    *Logger
	sessionID string
}

// SessionID returns the attached session ID.
func (s *SessionLogger) SessionID() string {
	return s.sessionID
}

// Command records one executed command line and its exit status.
func (s *SessionLogger) Command(dir, command string, status int) error {
	return s.logger.Record(&Entry{
		TimestampMicros: time.Now().UnixMicro(),
		SessionID:       s.sessionID,
		Dir:             dir,
		Command:         command,
		Status:          status,
	})
}
