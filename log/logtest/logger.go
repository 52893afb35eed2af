/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package logtest

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ssgreg/logf"

	"github.com/acronis/go-cachekit/log"
)

// NewLogger returns a preconfigured logger writing JSON to stderr at debug level.
// It is meant for tests only and is too slow for production use.
func NewLogger() log.FieldLogger {
	return NewLoggerWithOpts(LoggerOpts{Output: os.Stderr})
}

// LoggerOpts holds options for the test logger, such as the output target.
type LoggerOpts struct {
	Output io.Writer
}

// NewLoggerWithOpts returns a test logger configured with the given options.
// Nil opts.Output defaults to os.Stderr.
func NewLoggerWithOpts(opts LoggerOpts) log.FieldLogger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	w := &syncedEntryWriter{
		output: output,
		encoder: logf.NewJSONEncoder(logf.JSONEncoderConfig{
			EncodeTime:   logf.RFC3339NanoTimeEncoder,
			FieldKeyTime: "time",
		}),
	}
	return &log.LogfAdapter{Logger: logf.NewLogger(logf.LevelDebug, w)}
}

// syncedEntryWriter encodes every entry synchronously, so a test failure
// cannot lose buffered log lines.
type syncedEntryWriter struct {
	mu      sync.Mutex
	encoder logf.Encoder
	output  io.Writer
}

//nolint:gocritic
func (w *syncedEntryWriter) WriteEntry(e logf.Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var buf logf.Buffer
	if err := w.encoder.Encode(&buf, e); err != nil {
		_, _ = fmt.Fprint(w.output, err)
		return
	}
	_, _ = fmt.Fprint(w.output, string(buf.Data))
}
