package logging

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_FieldsAndLevels(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core)

	log.Debug("debug msg", String("k", "v"))
	log.Info("info msg", Int("n", 7), Int64("big", 1<<40), Float64("f", 0.5))
	log.Warn("warn msg", Duration("d", time.Second))
	log.Error("error msg", Err(errors.New("boom")))

	entries := observed.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Message != "debug msg" || entries[0].ContextMap()["k"] != "v" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].ContextMap()["big"] != int64(1<<40) {
		t.Fatalf("int64 field not captured: %+v", entries[1].ContextMap())
	}
	if entries[3].ContextMap()["error"] != "boom" {
		t.Fatalf("error field not captured: %+v", entries[3].ContextMap())
	}
}

func TestWith_DoesNotMutateParent(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	parent := NewLoggerFromCore(core)
	child := parent.With(String("component", "rules"))

	parent.Info("from parent")
	child.Info("from child")

	entries := observed.All()
	if _, ok := entries[0].ContextMap()["component"]; ok {
		t.Fatal("parent logger picked up child field")
	}
	if entries[1].ContextMap()["component"] != "rules" {
		t.Fatal("child logger missing its field")
	}
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	if f.Key != "error" || f.Value != "<nil>" {
		t.Fatalf("unexpected nil error field: %+v", f)
	}
}

func TestNopLogger_NoPanic(t *testing.T) {
	log := NewNopLogger()
	log.Debug("x")
	log.Info("x")
	log.Warn("x")
	log.Error("x")
	log.With(String("a", "b")).Named("n").Info("x")
}

func TestSetDefault(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	core, observed := observer.New(zapcore.InfoLevel)
	SetDefault(NewLoggerFromCore(core))
	Default().Info("via default")

	if observed.Len() != 1 {
		t.Fatalf("expected 1 entry via default logger, got %d", observed.Len())
	}

	// nil is ignored
	SetDefault(nil)
	if Default() == nil {
		t.Fatal("SetDefault(nil) must not clear the default")
	}
}
