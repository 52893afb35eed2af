/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package logtest

import (
	"sync"
	"time"

	"github.com/ssgreg/logf"

	"github.com/acronis/go-cachekit/log"
)

// RecordedEntry is a single log entry captured by Recorder.
type RecordedEntry struct {
	LoggerName string
	Fields     []log.Field
	Level      log.Level
	Time       time.Time
	Text       string
}

// FindField looks up a field of the entry by its key.
func (re *RecordedEntry) FindField(key string) (*log.Field, bool) {
	for i := range re.Fields {
		if re.Fields[i].Key == key {
			field := re.Fields[i]
			return &field, true
		}
	}
	return nil, false
}

// Recorder is a log.FieldLogger that keeps every logged entry in memory
// so tests can inspect them.
type Recorder struct {
	*log.LogfAdapter
	sink *recordingSink
}

// NewRecorder creates a Recorder that captures entries at debug level and above.
func NewRecorder() *Recorder {
	sink := &recordingSink{}
	return &Recorder{&log.LogfAdapter{Logger: logf.NewLogger(logf.LevelDebug, sink)}, sink}
}

// With returns a new Recorder that attaches the given fields to every entry.
func (r *Recorder) With(fs ...log.Field) log.FieldLogger {
	return &Recorder{r.LogfAdapter.With(fs...).(*log.LogfAdapter), r.sink}
}

// WithLevel returns a new Recorder with an additional level check.
// Entries below both the given and the previously set level are dropped,
// so the level can effectively only be raised.
func (r *Recorder) WithLevel(level log.Level) log.FieldLogger {
	return &Recorder{r.LogfAdapter.WithLevel(level).(*log.LogfAdapter), r.sink}
}

// Entries returns a copy of all captured entries.
func (r *Recorder) Entries() []RecordedEntry {
	r.sink.mu.RLock()
	defer r.sink.mu.RUnlock()
	entries := make([]RecordedEntry, len(r.sink.entries))
	copy(entries, r.sink.entries)
	return entries
}

// FindEntry looks up a captured entry by its message text.
func (r *Recorder) FindEntry(msg string) (RecordedEntry, bool) {
	return r.FindEntryByFilter(func(entry RecordedEntry) bool {
		return entry.Text == msg
	})
}

// FindEntryByFilter returns the first captured entry matching the filter.
func (r *Recorder) FindEntryByFilter(filter func(entry RecordedEntry) bool) (RecordedEntry, bool) {
	r.sink.mu.RLock()
	defer r.sink.mu.RUnlock()
	for _, entry := range r.sink.entries {
		if filter(entry) {
			return entry, true
		}
	}
	return RecordedEntry{}, false
}

// FindAllEntriesByFilter returns all captured entries matching the filter.
func (r *Recorder) FindAllEntriesByFilter(filter func(entry RecordedEntry) bool) []RecordedEntry {
	r.sink.mu.RLock()
	defer r.sink.mu.RUnlock()
	var matched []RecordedEntry
	for _, entry := range r.sink.entries {
		if filter(entry) {
			matched = append(matched, entry)
		}
	}
	return matched
}

// Reset drops all captured entries.
func (r *Recorder) Reset() {
	r.sink.mu.Lock()
	r.sink.entries = nil
	r.sink.mu.Unlock()
}

type recordingSink struct {
	mu      sync.RWMutex
	entries []RecordedEntry
}

//nolint:gocritic
func (s *recordingSink) WriteEntry(e logf.Entry) {
	fields := make([]log.Field, 0, len(e.Fields)+len(e.DerivedFields))
	fields = append(fields, e.Fields...)
	fields = append(fields, e.DerivedFields...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, RecordedEntry{
		LoggerName: e.LoggerName,
		Fields:     fields,
		Level:      levelFromLogf(e.Level),
		Time:       e.Time,
		Text:       e.Text,
	})
}

func levelFromLogf(value logf.Level) log.Level {
	switch value {
	case logf.LevelDebug:
		return log.LevelDebug
	case logf.LevelInfo:
		return log.LevelInfo
	case logf.LevelWarn:
		return log.LevelWarn
	case logf.LevelError:
		return log.LevelError
	}
	return log.LevelInfo
}
