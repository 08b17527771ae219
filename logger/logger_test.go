package logger

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapReporter(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	r := New(zap.New(core))

	r.Note("round started", "targets", 2)
	r.Error("target failed", errors.New("boom"), "target", "example.com/model.User")

	type entry struct {
		Level   zapcore.Level
		Message string
		Context map[string]any
	}
	var got []entry
	for _, e := range logs.All() {
		got = append(got, entry{Level: e.Level, Message: e.Message, Context: e.ContextMap()})
	}

	want := []entry{
		{Level: zap.InfoLevel, Message: "round started", Context: map[string]any{"targets": int64(2)}},
		{Level: zap.ErrorLevel, Message: "target failed", Context: map[string]any{"target": "example.com/model.User", "error": "boom"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_nilLogger(t *testing.T) {
	t.Parallel()

	// nil は Nop ロガーとして扱われ、panic しない
	r := New(nil)
	r.Note("ignored")
	r.Error("ignored", errors.New("boom"))
}
