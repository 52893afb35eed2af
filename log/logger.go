/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ssgreg/logf"
	"github.com/ssgreg/logftext"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Field holds a key-value pair attached to a log entry.
type Field = logf.Field

// CloseFunc flushes and closes the underlying channel writer.
type CloseFunc logf.ChannelWriterCloseFunc

// LogFunc allows logging a message with a bound level.
// nolint: revive
type LogFunc = logf.LogFunc

// String constructs a Field with the given key and string value.
var String = logf.String

// Strings constructs a Field with the given key and slice of strings.
var Strings = logf.Strings

// Bytes constructs a Field with the given key and slice of bytes.
var Bytes = logf.Bytes

// Bool constructs a Field with the given key and bool value.
var Bool = logf.Bool

// Int constructs a Field with the given key and int value.
var Int = logf.Int

// Int32 constructs a Field with the given key and int32 value.
var Int32 = logf.Int32

// Int64 constructs a Field with the given key and int64 value.
var Int64 = logf.Int64

// Uint32 constructs a Field with the given key and uint32 value.
var Uint32 = logf.Uint32

// Uint64 constructs a Field with the given key and uint64 value.
var Uint64 = logf.Uint64

// Float64 constructs a Field with the given key and float64 value.
var Float64 = logf.Float64

// Duration constructs a Field with the given key and time.Duration value.
var Duration = logf.Duration

// Time constructs a Field with the given key and time.Time value.
var Time = logf.Time

// Error constructs a Field with the given error under the 'error' key.
var Error = logf.Error

// NamedError constructs a Field with the given key and error.
var NamedError = logf.NamedError

// Any constructs a Field with the given key and a value of any type,
// picking the best available representation.
var Any = logf.Any

// DurationIn constructs a Field with the "duration" key
// holding the value converted to the given unit (as int64).
func DurationIn(val, unit time.Duration) Field {
	return Int64("duration", val.Nanoseconds()/unit.Nanoseconds())
}

// FieldLogger is an interface for loggers writing logs in a structured format.
type FieldLogger interface {
	With(...Field) FieldLogger

	Debug(string, ...Field)
	Info(string, ...Field)
	Warn(string, ...Field)
	Error(string, ...Field)

	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})

	AtLevel(Level, func(LogFunc))
	WithLevel(level Level) FieldLogger
}

// LogfAdapter adapts logf.Logger to the FieldLogger interface.
type LogfAdapter struct {
	Logger *logf.Logger
}

// NewDisabledLogger returns a logger that discards everything.
func NewDisabledLogger() FieldLogger {
	return &LogfAdapter{logf.NewDisabledLogger()}
}

// NewLogger creates a logger set up according to the config.
// The returned CloseFunc flushes buffered entries and must be called before the program exits.
func NewLogger(cfg *Config) (FieldLogger, CloseFunc) {
	appender := makeLogfAppender(cfg)
	channel, closeFunc := logf.NewChannelWriter(logf.ChannelWriterConfig{
		Appender:          appender,
		EnableSyncOnError: true,
	})
	logfLogger := logf.NewLogger(convertLevelToLogfLevel(cfg.Level), channel)
	logfLogger = logfLogger.With(logf.Int("pid", os.Getpid()))
	if cfg.AddCaller {
		// skip one stack frame so the caller of the logging method is reported
		logfLogger = logfLogger.WithCaller().WithCallerSkip(1)
	}
	return &LogfAdapter{logfLogger}, CloseFunc(closeFunc)
}

// With returns a new logger that attaches the given fields to every entry.
func (l *LogfAdapter) With(fs ...Field) FieldLogger {
	return &LogfAdapter{l.Logger.With(fs...)}
}

// Debug writes the message at "debug" level with the given fields.
func (l *LogfAdapter) Debug(s string, fields ...Field) {
	l.Logger.Debug(s, fields...)
}

// Info writes the message at "info" level with the given fields.
func (l *LogfAdapter) Info(s string, fields ...Field) {
	l.Logger.Info(s, fields...)
}

// Warn writes the message at "warn" level with the given fields.
func (l *LogfAdapter) Warn(s string, fields ...Field) {
	l.Logger.Warn(s, fields...)
}

// Error writes the message at "error" level with the given fields.
func (l *LogfAdapter) Error(s string, fields ...Field) {
	l.Logger.Error(s, fields...)
}

// Debugf writes the formatted message at "debug" level.
func (l *LogfAdapter) Debugf(format string, args ...interface{}) {
	l.logFormatted(LevelDebug, format, args...)
}

// Infof writes the formatted message at "info" level.
func (l *LogfAdapter) Infof(format string, args ...interface{}) {
	l.logFormatted(LevelInfo, format, args...)
}

// Warnf writes the formatted message at "warn" level.
func (l *LogfAdapter) Warnf(format string, args ...interface{}) {
	l.logFormatted(LevelWarn, format, args...)
}

// Errorf writes the formatted message at "error" level.
func (l *LogfAdapter) Errorf(format string, args ...interface{}) {
	l.logFormatted(LevelError, format, args...)
}

func (l *LogfAdapter) logFormatted(level Level, format string, args ...interface{}) {
	l.AtLevel(level, func(logMsg LogFunc) {
		logMsg(fmt.Sprintf(format, args...))
	})
}

// AtLevel calls the given fn if logging a message at the specified level
// is enabled, passing a LogFunc with the bound level.
func (l *LogfAdapter) AtLevel(level Level, fn func(logFunc LogFunc)) {
	l.Logger.AtLevel(convertLevelToLogfLevel(level), fn)
}

// WithLevel returns a new logger with an additional level check.
// Entries below both the given and the previously set level are dropped,
// so the level can effectively only be raised.
func (l *LogfAdapter) WithLevel(level Level) FieldLogger {
	return &LogfAdapter{Logger: l.Logger.WithLevel(convertLevelToLogfLevel(level))}
}

func convertLevelToLogfLevel(value Level) logf.Level {
	switch value {
	case LevelError:
		return logf.LevelError
	case LevelWarn:
		return logf.LevelWarn
	case LevelInfo:
		return logf.LevelInfo
	case LevelDebug:
		return logf.LevelDebug
	}
	return logf.LevelInfo
}

func makeLogfAppender(cfg *Config) logf.Appender {
	switch cfg.Output {
	case OutputFile:
		writer := &lumberjack.Logger{
			Filename:   resolvePlaceholders(cfg.File.Path),
			MaxSize:    int(cfg.File.Rotation.MaxSize / 1024 / 1024),
			MaxBackups: cfg.File.Rotation.MaxBackups,
			MaxAge:     cfg.File.Rotation.MaxAgeDays,
			Compress:   cfg.File.Rotation.Compress,
			LocalTime:  cfg.File.Rotation.LocalTimeInNames,
		}
		return makeLogfAppenderWithWriter(cfg, writer)
	case OutputStderr:
		return makeLogfAppenderWithWriter(cfg, os.Stderr)
	default:
		return makeLogfAppenderWithWriter(cfg, os.Stdout)
	}
}

func makeLogfAppenderWithWriter(cfg *Config, w io.Writer) logf.Appender {
	timeEncoder := logf.RFC3339NanoTimeEncoder

	var errorEncoder logf.ErrorEncoder
	if cfg.Error.VerboseSuffix != "" || cfg.Error.NoVerbose {
		errorEncoder = logf.NewErrorEncoder(logf.ErrorEncoderConfig{
			NoVerboseField:     cfg.Error.NoVerbose,
			VerboseFieldSuffix: cfg.Error.VerboseSuffix,
		})
	}

	if cfg.Format == FormatText {
		noColor := cfg.NoColor
		return logftext.NewAppender(w, logftext.EncoderConfig{
			NoColor:     &noColor,
			EncodeTime:  timeEncoder,
			EncodeError: errorEncoder,
		})
	}

	return logf.NewWriteAppender(w, logf.NewJSONEncoder(logf.JSONEncoderConfig{
		EncodeTime:   timeEncoder,
		EncodeError:  errorEncoder,
		FieldKeyTime: "time",
	}))
}

// resolvePlaceholders substitutes {{starttime}} and {{pid}} in the log file path.
func resolvePlaceholders(filePath string) string {
	res := strings.ReplaceAll(filePath, "{{starttime}}", time.Now().Format("200601021504"))
	return strings.ReplaceAll(res, "{{pid}}", strconv.Itoa(os.Getpid()))
}
