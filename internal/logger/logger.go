package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log with helpers for publishing events
type Logger struct {
	*log.Logger
}

// New creates a logger writing to w at info level
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// FromName creates a stderr logger from a level name, falling back to info
func FromName(name string) *Logger {
	level, err := log.ParseLevel(name)
	if err != nil {
		level = log.InfoLevel
	}
	return NewWithLevel(os.Stderr, level)
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(io.Discard)
}

// With returns a child logger carrying the given key/value pairs
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{Logger: l.Logger.With(keyvals...)}
}

// ConfigLoaded logs which config file was used
func (l *Logger) ConfigLoaded(file string) {
	if file == "" {
		l.Debug("no config file found, using defaults")
		return
	}
	l.Debug("config loaded", "file", file)
}

// ArticleLoaded logs a parsed article
func (l *Logger) ArticleLoaded(file, title, slug string) {
	l.Debug("article loaded",
		"file", file,
		"title", title,
		"slug", slug)
}

// Outcome logs the result of publishing one article
func (l *Logger) Outcome(action, slug, message string) {
	switch action {
	case "fail":
		l.Error("publish failed", "slug", slug, "error", message)
	case "skip":
		l.Skipped(slug, message)
	default:
		l.Info("article "+action, "slug", slug, "detail", message)
	}
}

// Skipped logs an article left untouched
func (l *Logger) Skipped(slug, reason string) {
	l.Warn("skipped", "slug", slug, "reason", reason)
}

// BatchCompleted logs the summary of a batch run
func (l *Logger) BatchCompleted(created, updated, skipped, failed int, duration time.Duration) {
	l.Info("batch completed",
		"created", created,
		"updated", updated,
		"skipped", skipped,
		"failed", failed,
		"duration", duration.Round(time.Millisecond))
}

// ImageUploaded logs a successful upload
func (l *Logger) ImageUploaded(path, url string, cached bool) {
	l.Info("image uploaded",
		"file", path,
		"url", url,
		"cached", cached)
}

// ImageFailed logs a failed upload
func (l *Logger) ImageFailed(path string, err error) {
	l.Error("image upload failed",
		"file", path,
		"error", err)
}

// ImageMissing logs a referenced image that does not exist
func (l *Logger) ImageMissing(path string) {
	l.Warn("image not found, skipping", "file", path)
}

// Warning logs a recoverable problem tied to a file
func (l *Logger) Warning(file, message string) {
	l.Warn(message, "file", file)
}
