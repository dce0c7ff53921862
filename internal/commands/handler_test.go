package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-press/pkg/interfaces"
)

type testMessage struct {
	fail bool
}

func (testMessage) Type() string { return "press.test.message" }

func (m testMessage) Validate() error {
	if m.fail {
		return errors.New("message invalid")
	}
	return nil
}

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	mu      sync.Mutex
	fields  map[string]any
	entries *[]recordedEntry
}

func newRecordingLogger() *recordingLogger {
	entries := []recordedEntry{}
	return &recordingLogger{entries: &entries}
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, recordedEntry{level: level, msg: msg, fields: l.fields})
}

func (l *recordingLogger) Trace(msg string, _ ...any) { l.record("trace", msg) }
func (l *recordingLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record("error", msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any) { l.record("fatal", msg) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := map[string]any{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{fields: merged, entries: l.entries}
}

func (l *recordingLogger) all() []recordedEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedEntry(nil), *l.entries...)
}

func TestHandlerExecuteSuccess(t *testing.T) {
	logger := newRecordingLogger()
	executed := false
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		executed = true
		return nil
	}, WithLogger[testMessage](logger), WithOperation[testMessage]("test.op"))

	if err := handler.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !executed {
		t.Fatal("handler function was not invoked")
	}

	var sawSuccess bool
	for _, entry := range logger.all() {
		if entry.msg == "command.execute.success" {
			sawSuccess = true
			if entry.fields["operation"] != "test.op" {
				t.Errorf("expected operation field, got %v", entry.fields)
			}
			if entry.fields["command"] != "press.test.message" {
				t.Errorf("expected command field, got %v", entry.fields)
			}
		}
	}
	if !sawSuccess {
		t.Error("expected success log entry")
	}
}

func TestHandlerExecuteValidationFailure(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		t.Fatal("handler must not run for invalid messages")
		return nil
	})

	err := handler.Execute(context.Background(), testMessage{fail: true})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Errorf("expected validation category, got %v", err)
	}
}

func TestHandlerExecuteWrapsFailures(t *testing.T) {
	boom := errors.New("boom")
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		return boom
	})

	err := handler.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected execution error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("wrapped error should preserve cause, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Errorf("expected command category, got %v", err)
	}
}

func TestHandlerExecuteTimeout(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := handler.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestHandlerMessageFields(t *testing.T) {
	logger := newRecordingLogger()
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		return nil
	},
		WithLogger[testMessage](logger),
		WithMessageFields(func(msg testMessage) map[string]any {
			return map[string]any{"custom": "value"}
		}),
	)

	if err := handler.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	for _, entry := range logger.all() {
		if entry.msg == "command.execute.success" {
			if entry.fields["custom"] != "value" {
				t.Errorf("expected message fields in log entry, got %v", entry.fields)
			}
			return
		}
	}
	t.Error("expected success log entry")
}

func TestHandlerTelemetryCallback(t *testing.T) {
	var info TelemetryInfo
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		return nil
	}, WithTelemetry(func(ctx context.Context, msg testMessage, i TelemetryInfo) {
		info = i
	}))

	if err := handler.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if info.Status != TelemetryStatusSuccess {
		t.Errorf("expected success status, got %q", info.Status)
	}
	if info.Command != "press.test.message" {
		t.Errorf("unexpected command %q", info.Command)
	}
}

func TestHandlerTelemetryFailure(t *testing.T) {
	var info TelemetryInfo
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		return errors.New("boom")
	}, WithTelemetry(func(ctx context.Context, msg testMessage, i TelemetryInfo) {
		info = i
	}))

	if err := handler.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected error")
	}
	if info.Status != TelemetryStatusFailed {
		t.Errorf("expected failed status, got %q", info.Status)
	}
	if info.Error == nil {
		t.Error("telemetry should carry the wrapped error")
	}
}
