package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Logger is a slog logger writing to a file that can be rotated while in use.
type Logger struct {
	*slog.Logger
	out *fileWriter
}

// fileWriter serializes writes and lets the file be swapped underneath.
type fileWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
}

func (w *fileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Write(p)
}

func openLogFile(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// NewLogger creates a text logger appending to filePath.
func NewLogger(filePath string, level slog.Level) (*Logger, error) {
	file, err := openLogFile(filePath)
	if err != nil {
		return nil, err
	}
	out := &fileWriter{path: filePath, file: file}
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})),
		out:    out,
	}, nil
}

// NewStderrLogger is used by the binaries that do not own a terminal UI.
func NewStderrLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Close closes the log file
func (l *Logger) Close() error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	return l.out.file.Close()
}

// Rotate moves the current file aside with a date suffix and starts a new one.
func (l *Logger) Rotate(now time.Time) error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if err := l.out.file.Close(); err != nil {
		return err
	}
	rotated := l.out.path + "." + now.Format("2006-01-02")
	if err := os.Rename(l.out.path, rotated); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	file, err := openLogFile(l.out.path)
	if err != nil {
		return err
	}
	l.out.file = file
	return nil
}

// RotateDaily rotates the log file every 24h until ctx is done.
func (l *Logger) RotateDaily(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := l.Rotate(now); err != nil {
				fmt.Fprintf(os.Stderr, "failed to rotate log file: %v\n", err)
				return
			}
		}
	}
}
