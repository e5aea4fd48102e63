// Package observability provides the structured logging handle passed
// explicitly into every pipeline stage, replacing ambient logger state.
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"
)

// Logger is the logging port used by the pipeline stages.
type Logger interface {
	LogDebug(ctx context.Context, message string, fields map[string]interface{})
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
	LogError(ctx context.Context, message string, fields map[string]interface{})
}

// Level defines the logging verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// ParseLevel maps a LOG_LEVEL value to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format defines the log output format.
type Format int

const (
	FormatHuman Format = iota
	FormatJSON
)

// DefaultLogger writes leveled, structured log lines to a writer.
type DefaultLogger struct {
	out    io.Writer
	level  Level
	format Format
	now    func() time.Time
}

// NewDefaultLogger creates a logger with the given level and format writing
// to out.
func NewDefaultLogger(out io.Writer, level Level, format Format) *DefaultLogger {
	return &DefaultLogger{
		out:    out,
		level:  level,
		format: format,
		now:    time.Now,
	}
}

// NewFromEnv builds a logger for stderr using LOG_LEVEL for verbosity.
// Human format is used when stderr is a terminal, JSON otherwise.
func NewFromEnv() *DefaultLogger {
	format := FormatJSON
	if term.IsTerminal(int(os.Stderr.Fd())) {
		format = FormatHuman
	}
	return NewDefaultLogger(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")), format)
}

func (l *DefaultLogger) LogDebug(ctx context.Context, message string, fields map[string]interface{}) {
	l.write(LevelDebug, "DEBUG", message, fields)
}

func (l *DefaultLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.write(LevelInfo, "INFO", message, fields)
}

func (l *DefaultLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.write(LevelWarning, "WARNING", message, fields)
}

func (l *DefaultLogger) LogError(ctx context.Context, message string, fields map[string]interface{}) {
	l.write(LevelError, "ERROR", message, fields)
}

func (l *DefaultLogger) write(level Level, label, message string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	timestamp := l.now().UTC().Format(time.RFC3339)

	if l.format == FormatJSON {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     strings.ToLower(label),
			"message":   message,
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.out, `{"timestamp":%q,"level":"error","message":"log marshal failed: %v"}`+"\n", timestamp, err)
			return
		}
		fmt.Fprintln(l.out, string(data))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s", timestamp, label, message)
	for _, k := range sortedKeys(fields) {
		fmt.Fprintf(&sb, " %s=%v", k, fields[k])
	}
	fmt.Fprintln(l.out, sb.String())
}

func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Nop is a Logger that discards everything; useful as a test default.
type Nop struct{}

func (Nop) LogDebug(context.Context, string, map[string]interface{})   {}
func (Nop) LogInfo(context.Context, string, map[string]interface{})    {}
func (Nop) LogWarning(context.Context, string, map[string]interface{}) {}
func (Nop) LogError(context.Context, string, map[string]interface{})   {}
