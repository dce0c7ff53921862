package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrContentDirRequired indicates the content directory is missing.
var ErrContentDirRequired = errors.New("press config: content directory is required")

// ErrGeneratorOutputDirRequired indicates the output directory is missing while the generator is enabled.
var ErrGeneratorOutputDirRequired = errors.New("press config: generator output directory is required when generator is enabled")

// ErrTemplatesDirRequired indicates the template directory is missing while the generator is enabled.
var ErrTemplatesDirRequired = errors.New("press config: template directory is required when generator is enabled")
var ErrGeneratorWorkersInvalid = errors.New("press config: generator workers must be zero or positive")
var ErrLoggingProviderRequired = errors.New("press config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("press config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("press config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("press config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the press module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled   bool
	Site      SiteConfig
	Content   ContentConfig
	Generator GeneratorConfig
	Features  Features
	Commands  CommandsConfig
	Logging   LoggingConfig
}

// SiteConfig carries site-wide metadata surfaced to templates and feeds.
type SiteConfig struct {
	Title       string
	Description string
	BaseURL     string
}

// ContentConfig captures filesystem and parser behaviour for Markdown ingestion.
type ContentConfig struct {
	Dir       string
	Pattern   string
	Recursive bool
	Parser    ParserConfig
}

// ParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type ParserConfig struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	Enabled          bool
	OutputDir        string
	TemplatesDir     string
	AssetsDir        string
	Incremental      bool
	CopyAssets       bool
	GenerateSitemap  bool
	GenerateRobots   bool
	GenerateFeeds    bool
	GenerateTagPages bool
	IncludeDrafts    bool
	Workers          int
	RenderTimeout    time.Duration
}

// Features toggles module functionality.
type Features struct {
	Generator bool
	Logger    bool
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool
	Timeout time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for a blog-style site.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Site: SiteConfig{
			Title: "Press",
		},
		Content: ContentConfig{
			Dir:       "content",
			Pattern:   "*.md",
			Recursive: true,
		},
		Generator: GeneratorConfig{
			Enabled:          true,
			OutputDir:        "dist",
			TemplatesDir:     "templates",
			CopyAssets:       true,
			GenerateSitemap:  true,
			GenerateRobots:   true,
			GenerateFeeds:    true,
			GenerateTagPages: true,
			Workers:          0,
		},
		Features: Features{
			Generator: true,
		},
		Commands: CommandsConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if cfg.Generator.Enabled {
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
		if strings.TrimSpace(cfg.Generator.TemplatesDir) == "" {
			return ErrTemplatesDirRequired
		}
		if cfg.Generator.Workers < 0 {
			return ErrGeneratorWorkersInvalid
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
