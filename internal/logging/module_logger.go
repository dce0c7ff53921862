package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-press/pkg/interfaces"
)

const (
	rootModule      = "press"
	loaderModule    = "press.loader"
	postsModule     = "press.posts"
	generatorModule = "press.generator"
)

const (
	fieldSourcePath = "source_path"
	fieldSlug       = "slug"
	fieldOutputPath = "output_path"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// LoaderLogger returns the logger namespace reserved for the content loader.
func LoaderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, loaderModule)
}

// PostsLogger returns the logger namespace reserved for the post model builder.
func PostsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, postsModule)
}

// GeneratorLogger returns the logger namespace reserved for the site generator.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// WithDocumentContext enriches the provided logger with common pipeline fields
// such as source path, slug, and output path. Empty values are ignored.
func WithDocumentContext(logger interfaces.Logger, source, slug, output string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(source); trimmed != "" {
		fields[fieldSourcePath] = trimmed
	}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldSlug] = trimmed
	}
	if trimmed := strings.TrimSpace(output); trimmed != "" {
		fields[fieldOutputPath] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
