package logger

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewHonoursLevel(t *testing.T) {
	cases := []struct {
		level string
		debug bool
		info  bool
	}{
		{level: "debug", debug: true, info: true},
		{level: "warn", debug: false, info: false},
		{level: "nonsense", debug: false, info: true},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			log, err := New(Config{Level: tc.level, Encoding: "console"})
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if got := log.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
				t.Fatalf("debug enabled = %v", got)
			}
			if got := log.Core().Enabled(zapcore.InfoLevel); got != tc.info {
				t.Fatalf("info enabled = %v", got)
			}
		})
	}
}

func TestNewWithFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{Level: "info", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Info("hello")
	_ = log.Sync()
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithRequestID(ContextWithRequestID(context.Background(), "req-1"), base).Info("tagged")
	WithRequestID(context.Background(), base).Info("plain")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-1" {
		t.Fatalf("request_id = %v", got)
	}
	if _, ok := entries[1].ContextMap()["request_id"]; ok {
		t.Fatalf("plain entry carries a request_id")
	}
}
