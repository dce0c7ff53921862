package generator

import (
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/posts"
)

// TemplateContext captures the data contract passed to TemplateRenderer
// implementations. It deliberately carries no wall-clock values so that the
// same input always renders to byte-identical output.
type TemplateContext struct {
	Site    SiteMetadata
	Post    *PostView
	Posts   []*PostView
	Tag     string
	Helpers TemplateHelpers
}

// SiteMetadata exposes site-wide information required by templates.
type SiteMetadata struct {
	Title       string
	Description string
	BaseURL     string
	Metadata    map[string]any
}

// PostView wraps a post with its rendered HTML body for template consumption.
type PostView struct {
	Post *posts.Post
	HTML template.HTML
}

// Slug returns the post's slug.
func (v *PostView) Slug() string { return v.Post.Slug }

// Title returns the post's title.
func (v *PostView) Title() string { return v.Post.Title }

// Excerpt returns the post's excerpt.
func (v *PostView) Excerpt() string { return v.Post.Excerpt }

// Tags returns the post's tags.
func (v *PostView) Tags() []string { return v.Post.Tags }

// PublishDate returns the post's publish date.
func (v *PostView) PublishDate() time.Time { return v.Post.PublishDate }

// Permalink returns the post's site-relative route.
func (v *PostView) Permalink() string { return postRoute(v.Post.Slug) }

// TemplateHelpers exposes convenience helpers for template authors.
type TemplateHelpers struct {
	baseURL string
}

func newTemplateHelpers(baseURL string) TemplateHelpers {
	return TemplateHelpers{baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the configured site base URL.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// WithBaseURL prefixes the provided path with the configured base URL.
func (h TemplateHelpers) WithBaseURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if h.baseURL == "" {
		return path
	}
	return h.baseURL + path
}

// RenderedPage captures the rendered HTML output for one document.
type RenderedPage struct {
	PostID   uuid.UUID
	Slug     string
	Route    string
	Output   string
	Template string
	HTML     string
	Checksum string
	Duration time.Duration
}

// RenderDiagnostic records rendering timing and errors for individual pages.
type RenderDiagnostic struct {
	Slug     string
	Route    string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}
