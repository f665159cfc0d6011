package closer

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Tests in this file swap the package logger and must not call t.Parallel.

func useObservedLogger(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

func TestLoggerCloseFailures(t *testing.T) {
	logs := useObservedLogger(t)
	tr := &tracker{}
	err := Run(context.Background(),
		[]Clause{tr.clause("a", errors.New("close a")), tr.clause("b", nil)},
		func(context.Context, Bindings) error { return errors.New("body") })
	if err == nil {
		t.Fatal("expected error")
	}

	failed := logs.FilterMessage("close failed").All()
	if len(failed) != 1 || failed[0].Level != zapcore.WarnLevel || failed[0].ContextMap()["hint"] != "a" {
		t.Fatalf("expected one warn for the close of a, got %v", failed)
	}
	closed := logs.FilterMessage("scope closed with suppressed errors").All()
	if len(closed) != 1 || closed[0].Level != zapcore.WarnLevel || closed[0].ContextMap()["suppressed"] != int64(1) {
		t.Fatalf("expected one warn for the suppressed error, got %v", closed)
	}
	if n := logs.FilterMessage("closed").Len(); n != 1 {
		t.Fatalf("expected debug entry for the close of b, got %d", n)
	}
}

func TestLoggerDroppedCloseErrorsOnRepanic(t *testing.T) {
	logs := useObservedLogger(t)
	tr := &tracker{}
	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Fatalf("expected re-panic, got %v", r)
			}
		}()
		_ = Run(context.Background(),
			[]Clause{tr.clause("a", errors.New("close a"))},
			func(context.Context, Bindings) error { panic("boom") },
			WithPanicAsError(false))
	}()

	dropped := logs.FilterMessage("close errors dropped while re-panicking").All()
	if len(dropped) != 1 || dropped[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected one error entry, got %v", dropped)
	}
	if msg := dropped[0].ContextMap()["error"]; msg != `panic: boom [suppressed: close "a": close a]` {
		t.Fatalf("unexpected logged error %q", msg)
	}
}

func TestLoggerAttachToClosedScope(t *testing.T) {
	logs := useObservedLogger(t)
	s := New(context.Background())
	_ = s.Close(nil)
	ref := new(int)
	calls := 0
	if got := AddCloseFn(s.Bindings(), ref, func(*int) error { calls++; return nil }); got != ref {
		t.Fatal("expected same reference back")
	}
	if logs.FilterMessage("close function not attached to a closed scope").Len() != 1 {
		t.Fatal("expected a warning for the dropped attachment")
	}
	if err := s.Bindings().Close(ref); !errors.Is(err, ErrNotCloseable) {
		t.Fatalf("attachment to a closed scope must not take effect, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("close function ran %d times", calls)
	}
}

func TestSetLoggerNilRestoresNop(t *testing.T) {
	prev := SetLogger(nil)
	t.Cleanup(func() { SetLogger(prev) })
	if Logger() == nil {
		t.Fatal("expected no-op logger")
	}
	if err := Run(context.Background(), []Clause{{Hint: "x", Acquire: func(context.Context, Bindings) (any, error) {
		return Func(func() error { return errors.New("x") }), nil
	}}}, nil); HintOf(err) != "x" {
		t.Fatalf("logging must not break closing, got %v", err)
	}
}
