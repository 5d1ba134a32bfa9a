package batch

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRun_PreservesInputOrder(t *testing.T) {
	inputs := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	out, err := Run(inputs, 3, func(s string) (interface{}, error) {
		return len(s), nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, in := range inputs {
		if out[i].(int) != len(in) {
			t.Errorf("out[%d] = %v, want %d", i, out[i], len(in))
		}
	}
}

func TestRun_EmptyInput(t *testing.T) {
	out, err := Run(nil, 4, func(s string) (interface{}, error) { return s, nil })
	if err != nil || out != nil {
		t.Errorf("Run(nil) = (%v, %v), want (nil, nil)", out, err)
	}
}

func TestRun_DefaultsWorkersWhenNonPositive(t *testing.T) {
	out, err := Run([]string{"x", "y"}, 0, func(s string) (interface{}, error) { return s, nil })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestRun_ReturnsLowestIndexError(t *testing.T) {
	inputs := []string{"ok", "bad0", "ok", "bad1"}
	_, err := Run(inputs, 1, func(s string) (interface{}, error) {
		if strings.HasPrefix(s, "bad") {
			return nil, fmt.Errorf(s)
		}
		return s, nil
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	// With a single worker, processing is strictly in input order, so the
	// first error produced is "bad0" at index 1 (the lowest erroring index).
	if err.Error() != "bad0" {
		t.Errorf("error = %q, want %q (the lowest-index failure)", err.Error(), "bad0")
	}
}

func TestRunWithLogger_NilLoggerIsSafe(t *testing.T) {
	out, err := RunWithLogger([]string{"a", "b"}, 2, func(s string) (interface{}, error) {
		return s, nil
	}, nil)
	if err != nil {
		t.Fatalf("RunWithLogger: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestRunWithLogger_LogsCorrelationID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	_, err := RunWithLogger([]string{"a"}, 1, func(s string) (interface{}, error) {
		return s, nil
	}, logger)
	if err != nil {
		t.Fatalf("RunWithLogger: %v", err)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2 (started + completed)", len(entries))
	}
	start := entries[0].ContextMap()
	if _, ok := start["correlation_id"]; !ok {
		t.Errorf("expected a correlation_id field on the start log entry, got %v", start)
	}
}

func TestRunWithLogger_LogsFailureAtWarn(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	_, err := RunWithLogger([]string{"bad"}, 1, func(s string) (interface{}, error) {
		return nil, fmt.Errorf("boom")
	}, logger)
	if err == nil {
		t.Fatal("expected an error")
	}

	var sawWarn bool
	for _, e := range logs.All() {
		if e.Level == zap.WarnLevel {
			sawWarn = true
		}
	}
	if !sawWarn {
		t.Error("expected a Warn-level log entry on batch failure")
	}
}

func TestRun_ManyInputsAllProcessed(t *testing.T) {
	n := 200
	inputs := make([]string, n)
	for i := range inputs {
		inputs[i] = strconv.Itoa(i)
	}
	out, err := Run(inputs, 8, func(s string) (interface{}, error) {
		v, _ := strconv.Atoi(s)
		return v * 2, nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := range inputs {
		if out[i].(int) != i*2 {
			t.Errorf("out[%d] = %v, want %d", i, out[i], i*2)
		}
	}
}
