package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		debug     bool
		wantDebug bool
	}{
		{"default info", "", false, false},
		{"info", "info", false, false},
		{"debug from config", "DEBUG", false, true},
		{"debug flag wins", "info", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.debug)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer Sync(log)

			got := log.Core().Enabled(zapcore.DebugLevel)
			if got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if !log.Core().Enabled(zapcore.InfoLevel) {
				t.Error("info level should always be enabled")
			}
		})
	}
}

func TestSync_Nil(t *testing.T) {
	Sync(nil)
}

func TestNew_StacktraceOnlyOnErrors(t *testing.T) {
	log, err := New("info", false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	core, logs := observer.New(zapcore.InfoLevel)
	log = log.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))

	log.Warn("watch handler failed")
	log.Error("tool failed")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Stack != "" {
		t.Errorf("warning carries a stack trace: %q", entries[0].Stack)
	}
	if entries[1].Stack == "" {
		t.Error("error should carry a stack trace")
	}
}
