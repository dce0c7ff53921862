package generator

import (
	"path"
	"strings"

	slug "github.com/goliatone/go-slug"
)

const (
	postTemplateName  = "post.html"
	indexTemplateName = "index.html"
	tagTemplateName   = "tag.html"
)

// postRoute returns the site-relative route for a post ("/slug/").
func postRoute(slug string) string {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" {
		return "/"
	}
	return "/" + slug + "/"
}

// tagRoute returns the site-relative route for a tag listing. Tags are
// normalized to slug form so labels with spaces or punctuation stay URL-safe.
func tagRoute(tag string) string {
	normalized, err := slug.Normalize(tag)
	if err != nil || normalized == "" {
		normalized = strings.ToLower(strings.TrimSpace(tag))
	}
	return "/tags/" + normalized + "/"
}

// routeOutputPath converts a route into the relative output file path,
// following the directory-per-page convention ("/slug/" -> "slug/index.html").
func routeOutputPath(route string) string {
	clean := strings.Trim(strings.TrimSpace(route), "/")
	if clean == "" {
		return "index.html"
	}
	return path.Join(clean, "index.html")
}
