package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/internal/posts"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled = errors.New("generator: service disabled")
	// ErrTemplateMissing indicates a required template is absent from the
	// template set. The run aborts before any output is written.
	ErrTemplateMissing  = errors.New("generator: template missing")
	errRendererRequired = errors.New("generator: template renderer is required")
	errLoaderRequired   = errors.New("generator: document loader is required")
	errBuilderRequired  = errors.New("generator: post builder is required")
)

const templateMissingCode = "PRESS_TEMPLATE_MISSING"

func templateMissing(name string) error {
	base := fmt.Errorf("%w: %q not found in template set", ErrTemplateMissing, name)
	return goerrors.Wrap(base, goerrors.CategoryValidation, "required template is absent").
		WithTextCode(templateMissingCode)
}

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	ContentDir       string
	OutputDir        string
	BaseURL          string
	SiteTitle        string
	SiteDescription  string
	Incremental      bool
	GenerateSitemap  bool
	GenerateRobots   bool
	GenerateFeeds    bool
	GenerateTagPages bool
	IncludeDrafts    bool
	Workers          int
	RenderTimeout    time.Duration
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	DryRun        bool
	Force         bool
	IncludeDrafts bool
	// Workers overrides the configured render worker count when positive.
	Workers int
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PostsLoaded  int
	PagesBuilt   int
	PagesSkipped int
	AssetsCopied int
	Tags         []string
	Duration     time.Duration
	Rendered     []RenderedPage
	Diagnostics  []RenderDiagnostic
	Errors       []error
	DryRun       bool
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Loader   *markdown.Loader
	Builder  *posts.Builder
	Parser   interfaces.MarkdownParser
	Renderer interfaces.TemplateRenderer
	Assets   fs.FS
	Logger   interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	return &service{cfg: cfg, deps: deps}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg  Config
	deps Dependencies
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}
	if s.deps.Loader == nil {
		return nil, errLoaderRequired
	}
	if s.deps.Builder == nil {
		return nil, errBuilderRequired
	}

	start := time.Now()

	if err := s.checkTemplates(); err != nil {
		return nil, err
	}

	contentDir := strings.TrimSpace(s.cfg.ContentDir)
	if contentDir == "" {
		contentDir = "."
	}
	docs, err := s.deps.Loader.LoadDirectory(ctx, contentDir, interfaces.LoadOptions{})
	if err != nil {
		return nil, err
	}

	collection, err := s.deps.Builder.Build(ctx, docs)
	if err != nil {
		return nil, err
	}
	loaded := len(collection)
	if !opts.IncludeDrafts && !s.cfg.IncludeDrafts {
		collection = collection.WithoutDrafts()
	}

	siteMeta := SiteMetadata{
		Title:       s.cfg.SiteTitle,
		Description: s.cfg.SiteDescription,
		BaseURL:     strings.TrimRight(s.cfg.BaseURL, "/"),
		Metadata:    map[string]any{},
	}

	result := &BuildResult{
		PostsLoaded: loaded,
		Tags:        collection.Tags(),
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(collection)),
	}

	views, err := s.renderBodies(ctx, collection)
	if err != nil {
		return nil, err
	}

	var writer artifactWriter = noopWriter{}
	var staging *stagingWriter
	manifest := newBuildManifest()
	if !opts.DryRun {
		staging, err = newStagingWriter(s.cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		defer func() {
			if staging != nil {
				staging.Discard()
			}
		}()
		writer = staging

		if s.cfg.Incremental && !opts.Force {
			prior, err := staging.ReadPriorManifest()
			if err != nil {
				result.Errors = append(result.Errors, err)
			} else if parsed, err := parseManifest(prior); err != nil {
				result.Errors = append(result.Errors, err)
			} else {
				manifest = parsed
			}
		}
	}

	var (
		mu       sync.Mutex
		rendered = make([]RenderedPage, 0, len(views))
	)
	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			result.Errors = append(result.Errors, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
		} else {
			result.PagesBuilt++
		}
		rendered = append(rendered, outcome.page)
	}

	indexViews := views
	workerCount := s.effectiveWorkerCount(opts, len(views))
	if workerCount <= 1 || len(views) <= 1 {
		for _, view := range views {
			if err := ctx.Err(); err != nil {
				result.Errors = append(result.Errors, err)
				return result, err
			}
			collect(s.renderPostPage(ctx, siteMeta, view, indexViews, manifest, staging, opts, writer))
		}
	} else {
		s.renderConcurrently(ctx, siteMeta, views, manifest, staging, opts, writer, workerCount, collect)
	}

	if len(result.Errors) > 0 {
		result.Duration = time.Since(start)
		return result, errors.Join(result.Errors...)
	}

	if err := s.renderIndexPage(ctx, siteMeta, indexViews, writer); err != nil {
		result.Errors = append(result.Errors, err)
	}

	if s.cfg.GenerateTagPages && len(result.Errors) == 0 {
		if err := s.renderTagPages(ctx, siteMeta, collection, indexViews, writer); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	if s.cfg.GenerateFeeds && len(result.Errors) == 0 {
		if err := s.writeFeeds(ctx, writer, siteMeta, s.buildFeedItems(collection)); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	if s.cfg.GenerateSitemap && len(result.Errors) == 0 {
		lastMods := make(map[string]time.Time, len(collection))
		for _, post := range collection {
			lastMods[post.Slug] = post.PublishDate
		}
		content := buildSitemap(siteMeta.BaseURL, rendered, lastMods)
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:        "sitemap.xml",
			Content:     strings.NewReader(content),
			Size:        int64(len(content)),
			Category:    categorySitemap,
			ContentType: "application/xml",
			Checksum:    computeHashFromString(content),
		}); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	if s.cfg.GenerateRobots && len(result.Errors) == 0 {
		content := buildRobots(siteMeta.BaseURL, s.cfg.GenerateSitemap)
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:        "robots.txt",
			Content:     strings.NewReader(content),
			Size:        int64(len(content)),
			Category:    categoryRobots,
			ContentType: "text/plain; charset=utf-8",
			Checksum:    computeHashFromString(content),
		}); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	if len(result.Errors) == 0 {
		copied, err := s.copyStaticAssets(ctx, writer)
		if err != nil {
			result.Errors = append(result.Errors, err)
		} else {
			result.AssetsCopied = copied
		}
	}

	if len(result.Errors) == 0 && !opts.DryRun {
		next := newBuildManifest()
		for _, page := range rendered {
			next.set(manifestEntryFor(page, collection))
		}
		if err := s.persistManifest(ctx, writer, next); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	result.Rendered = rendered
	result.Duration = time.Since(start)

	if len(result.Errors) > 0 {
		return result, errors.Join(result.Errors...)
	}

	if !opts.DryRun {
		if err := staging.Commit(); err != nil {
			result.Errors = append(result.Errors, err)
			return result, err
		}
		staging = nil
	}

	s.deps.Logger.Info("generator.build.complete",
		"pages_built", result.PagesBuilt,
		"pages_skipped", result.PagesSkipped,
		"assets_copied", result.AssetsCopied,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// Clean removes the output directory entirely.
func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	outputDir := strings.TrimSpace(s.cfg.OutputDir)
	if outputDir == "" {
		return errors.New("generator: output directory is required")
	}
	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("generator: clean %s: %w", outputDir, err)
	}
	s.deps.Logger.Info("generator.clean.complete", "output_dir", outputDir)
	return nil
}

// checkTemplates verifies the required templates before any filesystem work
// so a misconfigured template set never produces partial output.
func (s *service) checkTemplates() error {
	required := []string{postTemplateName, indexTemplateName}
	if s.cfg.GenerateTagPages {
		required = append(required, tagTemplateName)
	}
	for _, name := range required {
		if !s.deps.Renderer.Lookup(name) {
			return templateMissing(name)
		}
	}
	return nil
}

// renderBodies converts every post body to HTML once, before page rendering
// starts, so post pages, the index, and tag pages share the same view data.
func (s *service) renderBodies(ctx context.Context, collection posts.Collection) ([]*PostView, error) {
	views := make([]*PostView, 0, len(collection))
	for _, post := range collection {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var body []byte
		var err error
		if s.deps.Parser != nil {
			body, err = s.deps.Parser.Parse(post.Body)
			if err != nil {
				return nil, fmt.Errorf("generator: render markdown for %s: %w", post.SourcePath, err)
			}
		} else {
			body = post.Body
		}
		views = append(views, &PostView{Post: post, HTML: template.HTML(body)})
	}
	return views, nil
}

func (s *service) renderConcurrently(
	ctx context.Context,
	siteMeta SiteMetadata,
	views []*PostView,
	manifest *buildManifest,
	staging *stagingWriter,
	opts BuildOptions,
	writer artifactWriter,
	workers int,
	collect func(renderOutcome),
) {
	jobs := make(chan *PostView)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for view := range jobs {
				select {
				case <-ctx.Done():
					collect(renderOutcome{
						diagnostic: RenderDiagnostic{Slug: view.Post.Slug, Err: ctx.Err()},
						err:        ctx.Err(),
					})
				default:
					collect(s.renderPostPage(ctx, siteMeta, view, views, manifest, staging, opts, writer))
				}
			}
		}()
	}

	for _, view := range views {
		jobs <- view
	}
	close(jobs)
	wg.Wait()
}

func (s *service) renderPostPage(
	ctx context.Context,
	siteMeta SiteMetadata,
	view *PostView,
	all []*PostView,
	manifest *buildManifest,
	staging *stagingWriter,
	opts BuildOptions,
	writer artifactWriter,
) renderOutcome {
	post := view.Post
	route := postRoute(post.Slug)
	output := routeOutputPath(route)
	templateName := strings.TrimSpace(post.Template)
	if templateName == "" {
		templateName = postTemplateName
	}

	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{Slug: post.Slug, Route: route, Template: templateName},
	}

	if templateName != postTemplateName && !s.deps.Renderer.Lookup(templateName) {
		err := templateMissing(templateName)
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}

	sourceHash := hex.EncodeToString(post.Checksum)

	// Incremental runs reuse the previously published bytes when the source
	// is unchanged, skipping the template render but still staging the file
	// so the swapped-in output stays complete.
	if s.cfg.Incremental && !opts.Force && staging != nil && manifest.shouldSkip(post.Slug, sourceHash, output) {
		if prior, err := staging.PriorFile(output); err == nil && prior != nil {
			if err := writer.WriteFile(ctx, writeFileRequest{
				Path:        output,
				Content:     strings.NewReader(string(prior)),
				Size:        int64(len(prior)),
				Category:    categoryPage,
				ContentType: "text/html; charset=utf-8",
				Checksum:    computeHash(prior),
			}); err == nil {
				outcome.skipped = true
				outcome.diagnostic.Skipped = true
				outcome.page = RenderedPage{
					PostID:   post.ID,
					Slug:     post.Slug,
					Route:    route,
					Output:   output,
					Template: templateName,
					HTML:     string(prior),
					Checksum: computeHash(prior),
				}
				return outcome
			}
		}
	}

	templateCtx := TemplateContext{
		Site:    siteMeta,
		Post:    view,
		Posts:   all,
		Helpers: newTemplateHelpers(siteMeta.BaseURL),
	}

	start := time.Now()
	html, err := s.deps.Renderer.Render(templateName, templateCtx)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render template %q for post %s: %w", templateName, post.Slug, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	checksum := computeHashFromString(html)
	if err := writer.WriteFile(ctx, writeFileRequest{
		Path:        output,
		Content:     strings.NewReader(html),
		Size:        int64(len(html)),
		Category:    categoryPage,
		ContentType: "text/html; charset=utf-8",
		Checksum:    checksum,
	}); err != nil {
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}

	outcome.page = RenderedPage{
		PostID:   post.ID,
		Slug:     post.Slug,
		Route:    route,
		Output:   output,
		Template: templateName,
		HTML:     html,
		Checksum: checksum,
		Duration: duration,
	}
	return outcome
}

func (s *service) renderIndexPage(
	ctx context.Context,
	siteMeta SiteMetadata,
	views []*PostView,
	writer artifactWriter,
) error {
	templateCtx := TemplateContext{
		Site:    siteMeta,
		Posts:   views,
		Helpers: newTemplateHelpers(siteMeta.BaseURL),
	}
	html, err := s.deps.Renderer.Render(indexTemplateName, templateCtx)
	if err != nil {
		return fmt.Errorf("generator: render index: %w", err)
	}
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        routeOutputPath("/"),
		Content:     strings.NewReader(html),
		Size:        int64(len(html)),
		Category:    categoryIndex,
		ContentType: "text/html; charset=utf-8",
		Checksum:    computeHashFromString(html),
	})
}

func (s *service) renderTagPages(
	ctx context.Context,
	siteMeta SiteMetadata,
	collection posts.Collection,
	views []*PostView,
	writer artifactWriter,
) error {
	viewsBySlug := make(map[string]*PostView, len(views))
	for _, view := range views {
		viewsBySlug[view.Post.Slug] = view
	}

	for _, tag := range collection.Tags() {
		if err := ctx.Err(); err != nil {
			return err
		}
		tagged := collection.ByTag(tag)
		tagViews := make([]*PostView, 0, len(tagged))
		for _, post := range tagged {
			if view, ok := viewsBySlug[post.Slug]; ok {
				tagViews = append(tagViews, view)
			}
		}

		templateCtx := TemplateContext{
			Site:    siteMeta,
			Posts:   tagViews,
			Tag:     tag,
			Helpers: newTemplateHelpers(siteMeta.BaseURL),
		}
		html, err := s.deps.Renderer.Render(tagTemplateName, templateCtx)
		if err != nil {
			return fmt.Errorf("generator: render tag page %q: %w", tag, err)
		}
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:        routeOutputPath(tagRoute(tag)),
			Content:     strings.NewReader(html),
			Size:        int64(len(html)),
			Category:    categoryTag,
			ContentType: "text/html; charset=utf-8",
			Checksum:    computeHashFromString(html),
		}); err != nil {
			return err
		}
	}
	return nil
}

func manifestEntryFor(page RenderedPage, collection posts.Collection) manifestPost {
	entry := manifestPost{
		Slug:     page.Slug,
		Route:    page.Route,
		Output:   page.Output,
		Template: page.Template,
		Checksum: page.Checksum,
	}
	for _, post := range collection {
		if post.Slug == page.Slug {
			entry.Source = post.SourcePath
			entry.SourceHash = hex.EncodeToString(post.Checksum)
			entry.PublishDate = post.PublishDate
			break
		}
	}
	return entry
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        manifestFileName,
		Content:     strings.NewReader(string(data)),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
	})
}

func (s *service) effectiveWorkerCount(opts BuildOptions, pageCount int) int {
	workers := opts.Workers
	if workers <= 0 {
		workers = s.cfg.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if pageCount > 0 && workers > pageCount {
		return pageCount
	}
	return workers
}

type noopWriter struct{}

func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
