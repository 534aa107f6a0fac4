package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"trayfolders/internal/errors"

	"github.com/sirupsen/logrus"
)

var (
	isDebug = false
	logger  = NewLogger()
)

// Field is a single structured key/value attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger wraps a logrus entry. Loggers are cheap to derive with With and
// share the underlying output.
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

type options struct {
	out      io.Writer
	json     bool
	filePath string
}

// Option configures a Logger
type Option func(*options)

// WithOutput sends log lines to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithJSON switches to one JSON object per line
func WithJSON() Option {
	return func(o *options) {
		o.json = true
	}
}

// WithFile additionally appends log lines to the file at path
func WithFile(path string) Option {
	return func(o *options) {
		o.filePath = path
	}
}

// NewLogger creates a logger writing to stdout unless configured otherwise
func NewLogger(opts ...Option) *Logger {
	o := &options{out: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	base := logrus.New()
	base.SetLevel(logrus.DebugLevel)

	out := o.out
	var file *os.File
	if o.filePath != "" {
		f, err := os.OpenFile(o.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: cannot open %s: %v\n", o.filePath, err)
		} else {
			file = f
			out = io.MultiWriter(o.out, f)
		}
	}
	base.SetOutput(out)

	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		base.SetFormatter(&textFormatter{})
	}

	return &Logger{entry: logrus.NewEntry(base), file: file}
}

// Configure replaces the package-level logger
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// Close releases the log file opened by WithFile, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Default returns the package-level logger
func Default() *Logger {
	return logger
}

// SetDebug toggles emission of debug entries for every logger
func SetDebug(debug bool) {
	isDebug = debug
}

// With returns a derived logger carrying the given fields
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithContext attaches ctx to subsequent entries
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx), file: l.file}
}

// WithError attaches err and, for typed application errors, their kind and
// subject.
func (l *Logger) WithError(err error) *Logger {
	return l.With(errorFields(err)...)
}

func errorFields(err error) []Field {
	if err == nil {
		return []Field{F("error", "<nil>")}
	}
	fields := []Field{F("error", err.Error()), F("error_kind", int(errors.KindOf(err)))}

	var fileErr *errors.FileError
	if errors.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var configErr *errors.ConfigError
	if errors.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	var launchErr *errors.LaunchError
	if errors.As(err, &launchErr) {
		if launchErr.Path() != "" {
			fields = append(fields, F("path", launchErr.Path()))
		}
		if launchErr.Target() != "" {
			fields = append(fields, F("target", launchErr.Target()))
		}
	}
	var watchErr *errors.WatchError
	if errors.As(err, &watchErr) && watchErr.Root() != "" {
		fields = append(fields, F("root", watchErr.Root()))
	}
	return fields
}

func (l *Logger) emit(skip int, level logrus.Level, msg string) {
	if level == logrus.DebugLevel && !isDebug {
		return
	}
	entry := l.entry
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		entry = entry.WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	entry.Log(level, msg)
}

// Info logs at info level
func (l *Logger) Info(msg string) { l.emit(1, logrus.InfoLevel, msg) }

// Infof logs a formatted message at info level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.emit(1, logrus.InfoLevel, fmt.Sprintf(format, args...))
}

// Warn logs at warn level
func (l *Logger) Warn(msg string) { l.emit(1, logrus.WarnLevel, msg) }

// Warnf logs a formatted message at warn level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.emit(1, logrus.WarnLevel, fmt.Sprintf(format, args...))
}

// Error logs at error level
func (l *Logger) Error(msg string) { l.emit(1, logrus.ErrorLevel, msg) }

// Errorf logs a formatted message at error level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.emit(1, logrus.ErrorLevel, fmt.Sprintf(format, args...))
}

// Debug logs at debug level when debugging is enabled
func (l *Logger) Debug(msg string) { l.emit(1, logrus.DebugLevel, msg) }

// Debugf logs a formatted message at debug level when debugging is enabled
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.emit(1, logrus.DebugLevel, fmt.Sprintf(format, args...))
}

// Info logs a formatted message on the package-level logger
func Info(format string, args ...interface{}) {
	logger.emit(1, logrus.InfoLevel, fmt.Sprintf(format, args...))
}

// Infof is an alias of Info kept for symmetry with the other levels
func Infof(format string, args ...interface{}) {
	logger.emit(1, logrus.InfoLevel, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warning
func Warnf(format string, args ...interface{}) {
	logger.emit(1, logrus.WarnLevel, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error
func Errorf(format string, args ...interface{}) {
	logger.emit(1, logrus.ErrorLevel, fmt.Sprintf(format, args...))
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	logger.emit(1, logrus.DebugLevel, fmt.Sprintf(format, args...))
}

// LogWithFields returns the package-level logger with fields attached
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the package-level logger with err attached
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err with msg at error level
func LogError(err error, msg string) {
	logger.WithError(err).emit(1, logrus.ErrorLevel, msg)
}

// textFormatter renders "[time] LEVEL: message key=value ..." lines.
type textFormatter struct{}

func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s: %s", e.Time.Format("2006-01-02 15:04:05"), levelName(e.Level), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k == "caller" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	if caller, ok := e.Data["caller"]; ok {
		fmt.Fprintf(&b, " (%v)", caller)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelName(level logrus.Level) string {
	if level == logrus.WarnLevel {
		return "WARN"
	}
	return strings.ToUpper(level.String())
}
