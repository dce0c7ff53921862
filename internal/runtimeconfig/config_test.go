package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-press/internal/runtimeconfig"
)

func TestConfigValidate_Defaults(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresContentDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Dir = " "

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrContentDirRequired) {
		t.Fatalf("expected ErrContentDirRequired, got %v", err)
	}
}

func TestConfigValidate_AllowsDisabledGeneratorWithoutOutput(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Enabled = false
	cfg.Generator.OutputDir = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresOutputDirWhenGeneratorEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.OutputDir = " "

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrGeneratorOutputDirRequired) {
		t.Fatalf("expected ErrGeneratorOutputDirRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresTemplatesDirWhenGeneratorEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.TemplatesDir = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrTemplatesDirRequired) {
		t.Fatalf("expected ErrTemplatesDirRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsNegativeWorkers(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Workers = -2

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrGeneratorWorkersInvalid) {
		t.Fatalf("expected ErrGeneratorWorkersInvalid, got %v", err)
	}
}

func TestConfigValidate_LoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}

	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}

	cfg.Logging.Format = "json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}
