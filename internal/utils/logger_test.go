package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesAndRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecoadmin.log")
	l, err := NewLogger(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	l.Debug("hidden")
	l.Info("first", "screen", "bookings")
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := l.Rotate(day); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	l.Warn("second")

	old, err := os.ReadFile(path + ".2026-03-01")
	if err != nil {
		t.Fatalf("reading rotated file: %v", err)
	}
	if !strings.Contains(string(old), "msg=first") || !strings.Contains(string(old), "screen=bookings") {
		t.Errorf("rotated file missing entry: %s", old)
	}
	if strings.Contains(string(old), "hidden") {
		t.Error("debug entry should be filtered at info level")
	}
	cur, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading current file: %v", err)
	}
	if !strings.Contains(string(cur), "level=WARN") || strings.Contains(string(cur), "first") {
		t.Errorf("unexpected current file: %s", cur)
	}
}

func TestNewLoggerBadPath(t *testing.T) {
	if _, err := NewLogger(filepath.Join(t.TempDir(), "missing", "x.log"), slog.LevelInfo); err == nil {
		t.Error("expected error for unwritable path")
	}
}
