package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
	if err := Init(WithLevel("loud")); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithWriter(&buf), WithLevel("debug")); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = Init() }()

	Named("optimizer").With(Int("budget", 100)).Info(context.Background(), "squad built",
		String("status", "complete"),
		Float64("spend", 98.5),
		Bool("relaxed", false),
		Duration("took", 3*time.Millisecond),
		Error(errors.New("boom")),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "squad built" || entry["logger"] != "optimizer" || entry["status"] != "complete" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["error"] != "boom" {
		t.Fatalf("error field should be the message, got %v", entry["error"])
	}
	if entry["budget"] != float64(100) {
		t.Fatalf("With fields missing: %v", entry)
	}
	source, _ := entry["source"].(string)
	if !strings.Contains(source, "logger_test.go") {
		t.Fatalf("source should point at the caller, got %q", source)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = Init() }()

	ctx := context.Background()
	Get().Debug(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level, got %q", buf.String())
	}

	if err := SetLevelString("DEBUG"); err != nil {
		t.Fatalf("SetLevelString: %v", err)
	}
	Get().Debug(ctx, "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug should be logged after lowering the level, got %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error(context.Background(), "dropped")
	l.Fatal(context.Background(), "does not exit")
}
