package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger defines the minimal logging interface used throughout simmesh.
// This allows users to provide their own logger implementation or use the
// built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// Config configures construction of a SimLogger.
type Config struct {
	Level     slog.Level
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig returns a baseline JSON info level configuration.
func DefaultConfig() *Config {
	return &Config{Level: slog.LevelInfo, Format: "json", Output: os.Stdout}
}

// SimLogger wraps slog.Logger adding contextual cloning helpers and domain
// convenience methods. It is cheap to copy via the With* methods.
type SimLogger struct {
	logger    *slog.Logger
	component string
	sessionID string
	agentID   string
}

// NewSimLogger builds a SimLogger from a config (or defaults if nil).
func NewSimLogger(cfg *Config) *SimLogger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return &SimLogger{logger: slog.New(handler), component: cfg.Component}
}

// WithComponent sets the logical component (scanner, negotiator, convo, ...).
func (l *SimLogger) WithComponent(c string) *SimLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithSession attaches a session identifier to every log entry.
func (l *SimLogger) WithSession(sessionID string) *SimLogger {
	nl := *l
	nl.sessionID = sessionID
	return &nl
}

// WithAgent attaches an agent identifier to every log entry.
func (l *SimLogger) WithAgent(agentID string) *SimLogger {
	nl := *l
	nl.agentID = agentID
	return &nl
}

func (l *SimLogger) attrs(extra []any) []any {
	args := make([]any, 0, len(extra)+6)
	if l.component != "" {
		args = append(args, "component", l.component)
	}
	if l.sessionID != "" {
		args = append(args, "session_id", l.sessionID)
	}
	if l.agentID != "" {
		args = append(args, "agent_id", l.agentID)
	}
	return append(args, extra...)
}

// Debug logs at debug level.
func (l *SimLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, l.attrs(args)...) }

// Info logs at info level.
func (l *SimLogger) Info(msg string, args ...any) { l.logger.Info(msg, l.attrs(args)...) }

// Warn logs at warn level.
func (l *SimLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, l.attrs(args)...) }

// Error logs at error level.
func (l *SimLogger) Error(msg string, args ...any) { l.logger.Error(msg, l.attrs(args)...) }

// LogGeneratorCall records latency and outcome of a dialogue generator call.
func (l *SimLogger) LogGeneratorCall(speakerID string, dur time.Duration, err error) {
	args := l.attrs([]any{"speaker_id", speakerID, "duration", dur, "success", err == nil})
	if err != nil {
		args = append(args, "error", err.Error())
		l.logger.LogAttrs(context.Background(), slog.LevelError, "generator call failed", toAttrs(args)...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "generator call completed", toAttrs(args)...)
}

// LogSessionClosed records a session reaching its terminal state.
func (l *SimLogger) LogSessionClosed(sessionID string, turns int, reason string) {
	l.Info("session closed", "session_id", sessionID, "turn_count", turns, "reason", reason)
}

func toAttrs(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return attrs
}
