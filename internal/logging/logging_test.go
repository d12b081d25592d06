// logging_test.go

package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextFallsBackToGlobal(t *testing.T) {
	if FromContext(context.Background()) != zap.L() {
		t.Fatalf("expected global logger when none is stored")
	}
}

func TestContextRoundTrip(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core).With(zap.String("request_id", "r-1"))
	ctx := ContextWithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello")
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["request_id"] != "r-1" {
		t.Fatalf("request_id missing from %v", entries[0].ContextMap())
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := NewLogger("svc", "test", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	l, err := NewLogger("svc", "test", "debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("debug level should be enabled")
	}
}
