// Package logging owns the process logger: stderr text during bootstrap,
// stderr text plus a rotated JSON file once configuration is loaded.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultLevel is the log level used when not configured.
const DefaultLevel = slog.LevelInfo

// ParseLevel converts a string log level to slog.Level.
// Supported values: "debug", "info", "warn", "error" (case-insensitive).
// Returns (DefaultLevel, false) if the string is not recognized.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return DefaultLevel, false
	}
}

// FileOptions configures the rotated log file enabled by Upgrade.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Manager handles logger lifecycle including bootstrap-to-full mode transitions.
// Components should obtain a logger via Logger() and derive children with With.
type Manager struct {
	handler *swapHandler
	logger  *slog.Logger
	stderr  io.Writer
	file    *lumberjack.Logger
	level   *slog.LevelVar
	mu      sync.Mutex
}

// NewManager creates a logging manager in bootstrap mode (text to stderr).
func NewManager() *Manager {
	return newManager(os.Stderr)
}

func newManager(stderr io.Writer) *Manager {
	level := new(slog.LevelVar)
	level.Set(DefaultLevel)

	handler := newSwapHandler(slog.NewTextHandler(stderr, handlerOptions(level)))

	return &Manager{
		handler: handler,
		logger:  slog.New(handler),
		stderr:  stderr,
		level:   level,
	}
}

func handlerOptions(level slog.Leveler) *slog.HandlerOptions {
	return &slog.HandlerOptions{Level: level, ReplaceAttr: redactAttr}
}

// Logger returns the current logger instance.
// The returned logger is stable across Upgrade calls.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Upgrade switches to full mode: stderr text plus JSON to a size-rotated file.
// Returns an error if the log file cannot be created; the manager then stays
// in its previous mode.
func (m *Manager) Upgrade(opts FileOptions, level slog.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if opts.Path == "" {
		return errors.New("log file path is empty")
	}

	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %q; %w", dir, err)
	}

	// lumberjack opens lazily; probe now so misconfiguration surfaces here.
	probe, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q; %w", opts.Path, err)
	}
	_ = probe.Close()

	file := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}

	if m.file != nil {
		_ = m.file.Close()
	}
	m.file = file

	m.level.Set(level)

	hopts := handlerOptions(m.level)
	m.handler.swap(slogmulti.Fanout(
		slog.NewTextHandler(m.stderr, hopts),
		slog.NewJSONHandler(file, hopts),
	))

	return nil
}

// SetLevel changes the log level at runtime.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Close closes the log file, if any. Safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file != nil {
		err := m.file.Close()
		m.file = nil
		return err
	}
	return nil
}
