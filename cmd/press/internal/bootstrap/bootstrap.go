package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	press "github.com/goliatone/go-press"
	"github.com/goliatone/go-press/pkg/interfaces"
)

const envPrefix = "PRESS_"

// Options captures the tunable configuration for the press CLI.
type Options struct {
	ContentDir      string
	OutputDir       string
	TemplatesDir    string
	AssetsDir       string
	BaseURL         string
	SiteTitle       string
	SiteDescription string
	IncludeDrafts   bool
	Incremental     bool
	Workers         int
	LogLevel        string
	LogFormat       string
}

// Resources groups the module runtime, its resolved configuration, and the
// logger used by CLI commands.
type Resources struct {
	Module *press.Module
	Config press.Config
	Logger interfaces.Logger
}

// LoadEnv loads a .env file when present. Missing files are not an error;
// explicit environment variables always win over file values.
func LoadEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

// ApplyEnv overrides unset option fields from PRESS_* environment variables.
func ApplyEnv(opts Options) Options {
	opts.ContentDir = envString("CONTENT_DIR", opts.ContentDir)
	opts.OutputDir = envString("OUTPUT_DIR", opts.OutputDir)
	opts.TemplatesDir = envString("TEMPLATES_DIR", opts.TemplatesDir)
	opts.AssetsDir = envString("ASSETS_DIR", opts.AssetsDir)
	opts.BaseURL = envString("BASE_URL", opts.BaseURL)
	opts.SiteTitle = envString("SITE_TITLE", opts.SiteTitle)
	opts.SiteDescription = envString("SITE_DESCRIPTION", opts.SiteDescription)
	opts.LogLevel = envString("LOG_LEVEL", opts.LogLevel)
	opts.LogFormat = envString("LOG_FORMAT", opts.LogFormat)
	if workers, ok := envInt("WORKERS"); ok {
		opts.Workers = workers
	}
	return opts
}

// BuildModule initialises a press.Module configured for generator operations.
func BuildModule(opts Options) (*Resources, error) {
	cfg := press.DefaultConfig()
	cfg.Features.Logger = true

	if trimmed := strings.TrimSpace(opts.ContentDir); trimmed != "" {
		cfg.Content.Dir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.OutputDir); trimmed != "" {
		cfg.Generator.OutputDir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.TemplatesDir); trimmed != "" {
		cfg.Generator.TemplatesDir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.AssetsDir); trimmed != "" {
		cfg.Generator.AssetsDir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.BaseURL); trimmed != "" {
		cfg.Site.BaseURL = trimmed
	}
	if trimmed := strings.TrimSpace(opts.SiteTitle); trimmed != "" {
		cfg.Site.Title = trimmed
	}
	if trimmed := strings.TrimSpace(opts.SiteDescription); trimmed != "" {
		cfg.Site.Description = trimmed
	}
	if trimmed := strings.TrimSpace(opts.LogLevel); trimmed != "" {
		cfg.Logging.Level = trimmed
	}
	if trimmed := strings.TrimSpace(opts.LogFormat); trimmed != "" {
		cfg.Logging.Format = trimmed
	}
	cfg.Generator.IncludeDrafts = opts.IncludeDrafts
	cfg.Generator.Incremental = opts.Incremental
	if opts.Workers > 0 {
		cfg.Generator.Workers = opts.Workers
	}

	module, err := press.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise press module: %w", err)
	}

	return &Resources{
		Module: module,
		Config: cfg,
		Logger: module.Logger("press.cli"),
	}, nil
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(envPrefix + key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string) (int, bool) {
	value := strings.TrimSpace(os.Getenv(envPrefix + key))
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
