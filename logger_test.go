package mlfairy

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Debug("fetching metadata", "token", "tok")
	logger.Info("download complete", "bytes", 42)
	logger.Warn("checksum skipped")
	logger.Error("compilation failed", "err", "boom")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("got %d log entries, want 4", len(entries))
	}

	wantLevels := []zapcore.Level{
		zapcore.DebugLevel,
		zapcore.InfoLevel,
		zapcore.WarnLevel,
		zapcore.ErrorLevel,
	}
	for i, want := range wantLevels {
		if entries[i].Level != want {
			t.Errorf("entry %d level = %v, want %v", i, entries[i].Level, want)
		}
	}

	fields := entries[0].ContextMap()
	if fields["token"] != "tok" {
		t.Errorf("debug fields = %v, want token=tok", fields)
	}
	if entries[1].ContextMap()["bytes"] != int64(42) {
		t.Errorf("info fields = %v, want bytes=42", entries[1].ContextMap())
	}
}

func TestNewDefaultLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "", "bogus"} {
		logger, err := NewDefaultLogger(level)
		if err != nil {
			t.Errorf("NewDefaultLogger(%q) error = %v", level, err)
		}
		if logger == nil {
			t.Errorf("NewDefaultLogger(%q) returned nil logger", level)
		}
	}
}
