// Package debug provides categorized structured logging on top of log/slog.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Categories for debug logging
const (
	CategoryConnection  = "connection"
	CategoryQuery       = "query"
	CategoryDocument    = "document"
	CategorySchema      = "schema"
	CategoryExport      = "export"
	CategoryImport      = "import"
	CategoryKeyspace    = "keyspace"
	CategoryStorage     = "storage"
	CategoryPerformance = "performance"
)

// Logger wraps the slog logger used by every category helper.
type Logger struct {
	logger  *slog.Logger
	enabled bool
	mu      sync.RWMutex
}

var globalLogger = &Logger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

// Options configures Init.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // text or json
	Output io.Writer // defaults to stderr
}

// Init replaces the global logger and enables logging.
func Init(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	logger := slog.New(handler)

	SetLogger(logger)
	SetEnabled(true)
	return logger
}

// SetLogger installs an existing slog logger.
func SetLogger(logger *slog.Logger) {
	globalLogger.mu.Lock()
	globalLogger.logger = logger
	globalLogger.mu.Unlock()
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetEnabled enables or disables debug logging
func SetEnabled(enabled bool) {
	globalLogger.mu.Lock()
	globalLogger.enabled = enabled
	globalLogger.mu.Unlock()
}

// IsEnabled returns whether debug logging is enabled
func IsEnabled() bool {
	globalLogger.mu.RLock()
	defer globalLogger.mu.RUnlock()
	return globalLogger.enabled
}

// Log writes a debug record.
// category: one of the Category* constants
// message: short one-liner summary
// details: optional map with additional context (can be nil)
func Log(category, message string, details map[string]interface{}) {
	logAt(slog.LevelDebug, category, message, details)
}

// Warn writes a warning record; used for recovered failures the operator should see.
func Warn(category, message string, details map[string]interface{}) {
	logAt(slog.LevelWarn, category, message, details)
}

func logAt(level slog.Level, category, message string, details map[string]interface{}) {
	globalLogger.mu.RLock()
	enabled := globalLogger.enabled
	logger := globalLogger.logger
	globalLogger.mu.RUnlock()

	if !enabled || logger == nil {
		return
	}

	attrs := make([]slog.Attr, 0, len(details)+1)
	attrs = append(attrs, slog.String("category", category))
	for k, v := range details {
		attrs = append(attrs, slog.Any(k, v))
	}
	logger.LogAttrs(context.Background(), level, message, attrs...)
}

// Convenience functions for each category

// LogConnection logs a connection-related debug message
func LogConnection(message string, details map[string]interface{}) {
	Log(CategoryConnection, message, details)
}

// LogQuery logs a query-related debug message
func LogQuery(message string, details map[string]interface{}) {
	Log(CategoryQuery, message, details)
}

// LogDocument logs a document-related debug message
func LogDocument(message string, details map[string]interface{}) {
	Log(CategoryDocument, message, details)
}

// LogExport logs an export-related debug message
func LogExport(message string, details map[string]interface{}) {
	Log(CategoryExport, message, details)
}

// LogImport logs an import-related debug message
func LogImport(message string, details map[string]interface{}) {
	Log(CategoryImport, message, details)
}

// LogKeyspace logs a key browser debug message
func LogKeyspace(message string, details map[string]interface{}) {
	Log(CategoryKeyspace, message, details)
}

// LogStorage logs a session file debug message
func LogStorage(message string, details map[string]interface{}) {
	Log(CategoryStorage, message, details)
}

// LogPerformance logs a performance-related debug message
func LogPerformance(message string, details map[string]interface{}) {
	Log(CategoryPerformance, message, details)
}

// LogSchema logs a schema-related debug message
func LogSchema(message string, details map[string]interface{}) {
	Log(CategorySchema, message, details)
}
