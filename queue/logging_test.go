package queue

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExecutor_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	exec := New[any, int](
		WithLogger(zap.New(core)),
		WithRetryTimes(1),
		WithRetryDelay(0),
	).AddTask(
		constant(1),
		func(ctx context.Context) (int, error) { return 0, errors.New("nope") },
	)

	if _, err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := logs.FilterMessage("task admitted").Len(); n != 2 {
		t.Errorf("expected 2 admission logs, got %d", n)
	}
	if n := logs.FilterMessage("task settled").Len(); n != 2 {
		t.Errorf("expected 2 settle logs, got %d", n)
	}

	retries := logs.FilterMessage("task attempt failed, retrying").All()
	if len(retries) != 1 {
		t.Fatalf("expected 1 retry warning, got %d", len(retries))
	}
	if retries[0].Level != zapcore.WarnLevel {
		t.Errorf("expected retry log at warn, got %v", retries[0].Level)
	}
	if got := retries[0].ContextMap()["index"]; got != int64(1) {
		t.Errorf("expected retry log for index 1, got %v", got)
	}

	done := logs.FilterMessage("run complete").All()
	if len(done) != 1 {
		t.Fatalf("expected 1 run complete log, got %d", len(done))
	}
	fields := done[0].ContextMap()
	if fields["total"] != int64(2) || fields["failed"] != int64(1) || fields["attempts"] != int64(3) {
		t.Errorf("unexpected run complete fields: %v", fields)
	}
}

func TestWithLogger_NilFallsBackToNop(t *testing.T) {
	cfg := newConfig(WithLogger(nil))
	if cfg.logger == nil {
		t.Fatal("expected a no-op logger, got nil")
	}
	cfg.logger.Info("must not panic")
}
