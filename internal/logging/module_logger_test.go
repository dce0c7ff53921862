package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-press/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if fields == nil {
		fields = map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "press.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	// Ensure WithContext/WithFields do not panic.
	logger = logger.WithContext(context.Background())
	logger = WithFields(logger, map[string]any{"foo": "bar"})
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	logger := ModuleLogger(provider, generatorModule)

	if len(provider.requested) != 1 || provider.requested[0] != generatorModule {
		t.Fatalf("expected module %s, got %v", generatorModule, provider.requested)
	}

	if len(rec.fields) != 1 {
		t.Fatalf("expected module fields to be applied once, got %d", len(rec.fields))
	}

	if got, ok := rec.fields[0]["module"]; !ok || got != generatorModule {
		t.Fatalf("expected module field %s, got %v", generatorModule, rec.fields[0]["module"])
	}

	logger.Info("with provider")
}

func TestWithDocumentContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}

	WithDocumentContext(rec, "content/post.md", "", "  ")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields[fieldSourcePath] != "content/post.md" {
		t.Fatalf("expected source path field, got %#v", fields)
	}
	if _, ok := fields[fieldSlug]; ok {
		t.Fatalf("expected empty slug to be skipped, got %#v", fields)
	}
	if _, ok := fields[fieldOutputPath]; ok {
		t.Fatalf("expected blank output path to be skipped, got %#v", fields)
	}
}
