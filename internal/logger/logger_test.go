package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{EnvProd, EnvLocal, EnvDev, EnvDocker} {
		l, err := NewLogger(env)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", env, err)
			continue
		}
		if l == nil {
			t.Errorf("%s: expected logger", env)
		}
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging"); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger(EnvProd, "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn must be enabled")
	}

	if _, err := NewLogger(EnvProd, "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestForService(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ForService(zap.New(core), "matcher", EnvLocal).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["service"] != "matcher" || fields["env"] != EnvLocal {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestContextRoundTrip(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(core)

	FromContext(ContextWithLogger(context.Background(), l)).Info("x")
	if logs.Len() != 1 {
		t.Errorf("expected stored logger to be used, got %d entries", logs.Len())
	}

	// Missing logger falls back to a no-op.
	FromContext(context.Background()).Info("dropped")
	if logs.Len() != 1 {
		t.Error("fallback logger must not write to the observed core")
	}
}

func TestWith_StoresNarrowedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx, l := With(ctx, zap.String("service", "search"))
	l.Info("direct")
	FromContext(ctx).Info("via context")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.ContextMap()["service"] != "search" {
			t.Errorf("%q missing service field: %v", e.Message, e.ContextMap())
		}
	}
}
