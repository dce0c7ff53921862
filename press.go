package press

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-press/internal/adapters/htmltemplate"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/logging/gologger"
	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/internal/posts"
	"github.com/goliatone/go-press/internal/runtimeconfig"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions exports the generator build options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the generator build result.
type BuildResult = generator.BuildResult

// ErrModuleDisabled indicates the module was constructed with Enabled set to false.
var ErrModuleDisabled = errors.New("press: module is disabled")

// Option customises module construction, overriding pieces derived from the
// configuration.
type Option func(*moduleDeps)

// Module is the top level press runtime façade. It owns the loader, post
// builder, renderer, and generator for one site.
type Module struct {
	cfg       Config
	provider  interfaces.LoggerProvider
	loader    *markdown.Loader
	builder   *posts.Builder
	parser    interfaces.MarkdownParser
	renderer  interfaces.TemplateRenderer
	generator generator.Service
}

type moduleDeps struct {
	provider  interfaces.LoggerProvider
	contentFS fs.FS
	assetsFS  fs.FS
	renderer  interfaces.TemplateRenderer
}

// WithLoggerProvider overrides the logger provider derived from the Logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(d *moduleDeps) {
		d.provider = provider
	}
}

// WithContentFS overrides the content filesystem. By default content is read
// from Config.Content.Dir on the host filesystem.
func WithContentFS(fsys fs.FS) Option {
	return func(d *moduleDeps) {
		d.contentFS = fsys
	}
}

// WithAssetsFS overrides the static asset filesystem.
func WithAssetsFS(fsys fs.FS) Option {
	return func(d *moduleDeps) {
		d.assetsFS = fsys
	}
}

// WithRenderer overrides the template renderer derived from Generator.TemplatesDir.
func WithRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(d *moduleDeps) {
		d.renderer = renderer
	}
}

// New constructs a press module from the provided configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if !cfg.Enabled {
		return nil, ErrModuleDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps := moduleDeps{}
	for _, opt := range opts {
		opt(&deps)
	}

	provider := deps.provider
	if provider == nil {
		var err error
		provider, err = gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
	}

	contentFS := deps.contentFS
	if contentFS == nil {
		contentFS = os.DirFS(cfg.Content.Dir)
	}

	loader := markdown.NewLoader(contentFS, markdown.LoaderConfig{
		Pattern:   cfg.Content.Pattern,
		Recursive: cfg.Content.Recursive,
	})
	builder := posts.NewBuilder(logging.PostsLogger(provider))
	parser := markdown.NewGoldmarkParser(interfaces.ParseOptions{
		Extensions: cfg.Content.Parser.Extensions,
		Sanitize:   cfg.Content.Parser.Sanitize,
		HardWraps:  cfg.Content.Parser.HardWraps,
		SafeMode:   cfg.Content.Parser.SafeMode,
	})

	module := &Module{
		cfg:      cfg,
		provider: provider,
		loader:   loader,
		builder:  builder,
		parser:   parser,
	}

	if !cfg.Generator.Enabled || !cfg.Features.Generator {
		module.generator = generator.NewDisabledService()
		return module, nil
	}

	renderer := deps.renderer
	if renderer == nil {
		var err error
		renderer, err = htmltemplate.New(cfg.Generator.TemplatesDir)
		if err != nil {
			return nil, err
		}
	}
	module.renderer = renderer

	assetsFS := deps.assetsFS
	if assetsFS == nil && cfg.Generator.CopyAssets {
		if dir := strings.TrimSpace(cfg.Generator.AssetsDir); dir != "" {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				assetsFS = os.DirFS(dir)
			}
		}
	}

	module.generator = generator.NewService(generator.Config{
		OutputDir:        cfg.Generator.OutputDir,
		BaseURL:          cfg.Site.BaseURL,
		SiteTitle:        cfg.Site.Title,
		SiteDescription:  cfg.Site.Description,
		Incremental:      cfg.Generator.Incremental,
		GenerateSitemap:  cfg.Generator.GenerateSitemap,
		GenerateRobots:   cfg.Generator.GenerateRobots,
		GenerateFeeds:    cfg.Generator.GenerateFeeds,
		GenerateTagPages: cfg.Generator.GenerateTagPages,
		IncludeDrafts:    cfg.Generator.IncludeDrafts,
		Workers:          cfg.Generator.Workers,
		RenderTimeout:    cfg.Generator.RenderTimeout,
	}, generator.Dependencies{
		Loader:   loader,
		Builder:  builder,
		Parser:   parser,
		Renderer: renderer,
		Assets:   assetsFS,
		Logger:   logging.GeneratorLogger(provider),
	})
	return module, nil
}

// Generator returns the configured static site generator service.
func (m *Module) Generator() GeneratorService {
	return m.generator
}

// Loader returns the configured Markdown document loader.
func (m *Module) Loader() *markdown.Loader {
	return m.loader
}

// Posts returns the configured post builder.
func (m *Module) Posts() *posts.Builder {
	return m.builder
}

// Parser returns the configured Markdown parser.
func (m *Module) Parser() interfaces.MarkdownParser {
	return m.parser
}

// Logger returns a named logger from the module's provider.
func (m *Module) Logger(name string) interfaces.Logger {
	return logging.ModuleLogger(m.provider, name)
}

// DefaultConfig returns opinionated defaults for a blog-style site.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
