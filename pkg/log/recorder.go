package log

import (
	"context"
	"fmt"
	"sync"

	rperrors "github.com/YuminosukeSato/regpipe/pkg/errors"
)

// Entry is one record kept by a Recorder. Error values are stored as-is.
type Entry struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// Recorder is a LoggerProvider that keeps records in memory instead of writing them.
type Recorder struct {
	mu      sync.Mutex
	level   Level
	entries []Entry
}

var _ LoggerProvider = (*Recorder)(nil)

// NewRecorder returns a Recorder keeping records at level and above.
func NewRecorder(level Level) *Recorder {
	return &Recorder{level: level}
}

// Capture installs a new Recorder as the process-wide provider and routes library
// warnings into it. The returned function restores the previous provider and removes
// the warning route.
//
//	rec, restore := log.Capture(log.LevelDebug)
//	defer restore()
func Capture(level Level) (*Recorder, func()) {
	globalMu.Lock()
	prev := globalProvider
	globalMu.Unlock()

	rec := NewRecorder(level)
	SetProvider(rec)
	routeWarnings(rec)
	return rec, func() {
		rperrors.SetZerologWarnFunc(nil)
		SetProvider(prev)
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (r *Recorder) GetLogger() Logger {
	return &recordingLogger{rec: r}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (r *Recorder) GetLoggerWithName(name string) Logger {
	return &recordingLogger{rec: r, fields: map[string]any{ComponentKey: name}}
}

// SetLevel implements LoggerProvider.SetLevel.
func (r *Recorder) SetLevel(level Level) {
	r.mu.Lock()
	r.level = level
	r.mu.Unlock()
}

// Entries returns a copy of the records kept so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Find returns the first record with message msg.
func (r *Recorder) Find(msg string) (Entry, bool) {
	for _, e := range r.Entries() {
		if e.Message == msg {
			return e, true
		}
	}
	return Entry{}, false
}

// Reset drops every record.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

func (r *Recorder) enabled(level Level) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return level >= r.level
}

func (r *Recorder) add(level Level, msg string, base map[string]any, fields []any) {
	if !r.enabled(level) {
		return
	}
	e := Entry{Level: level, Message: msg, Fields: make(map[string]any, len(base)+len(fields)/2)}
	for k, v := range base {
		e.Fields[k] = v
	}
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			e.Fields["error"] = err
			fields = fields[1:]
		}
	}
	addPairs(e.Fields, fields)

	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

func addPairs(dst map[string]any, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		dst[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}
}

type recordingLogger struct {
	rec    *Recorder
	fields map[string]any
}

func (l *recordingLogger) Debug(msg string, fields ...any) {
	l.rec.add(LevelDebug, msg, l.fields, fields)
}

func (l *recordingLogger) Info(msg string, fields ...any) {
	l.rec.add(LevelInfo, msg, l.fields, fields)
}

func (l *recordingLogger) Warn(msg string, fields ...any) {
	l.rec.add(LevelWarn, msg, l.fields, fields)
}

func (l *recordingLogger) Error(msg string, fields ...any) {
	l.rec.add(LevelError, msg, l.fields, fields)
}

func (l *recordingLogger) With(fields ...any) Logger {
	merged := make(map[string]any, len(l.fields)+len(fields)/2)
	for k, v := range l.fields {
		merged[k] = v
	}
	addPairs(merged, fields)
	return &recordingLogger{rec: l.rec, fields: merged}
}

func (l *recordingLogger) Enabled(_ context.Context, level Level) bool {
	return l.rec.enabled(level)
}
