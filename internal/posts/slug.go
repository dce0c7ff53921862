package posts

import (
	"path"
	"strings"

	slug "github.com/goliatone/go-slug"
)

// SlugNormalizer exposes the slug normalizer interface.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the default slug normalizer.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// NormalizeSlug applies the default slug normalization rules: lowercase, runs
// of non-alphanumerics collapsed to single hyphens, leading and trailing
// hyphens trimmed.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidSlug reports whether the slug matches the default rules.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}

// slugStem derives the normalization input for a document: an explicit
// front-matter slug wins, otherwise the file name minus its extension. The
// date prefix is deliberately kept, so
// "2019-03-01-understanding-android-savedstate-and-savedstatehandle.md"
// yields "2019-03-01-understanding-android-savedstate-and-savedstatehandle".
func slugStem(filePath, override string) string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return trimmed
	}
	base := path.Base(strings.ReplaceAll(filePath, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
