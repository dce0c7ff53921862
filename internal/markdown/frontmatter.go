package markdown

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// datePrefixPattern matches the conventional YYYY-MM-DD- filename prefix used
// when the publish date is not declared in front matter.
var datePrefixPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-`)

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the structured front matter, the Markdown
// body without delimiters, and any error encountered.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// raw content, and modification time. The publish date is resolved from the
// explicit `date` field first, then from a YYYY-MM-DD- filename prefix; a
// document without either, or without the required `title` and `tags` fields,
// is rejected as malformed.
func BuildDocument(filePath string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, malformedFrontMatter(filePath, err.Error())
	}

	if strings.TrimSpace(fm.Title) == "" {
		return nil, malformedFrontMatter(filePath, "missing required field title")
	}
	if len(trimTags(fm.Tags)) == 0 {
		return nil, malformedFrontMatter(filePath, "missing required field tags")
	}
	fm.Tags = trimTags(fm.Tags)

	if fm.Date.IsZero() {
		derived, ok := dateFromFilename(filePath)
		if !ok {
			return nil, malformedFrontMatter(filePath, "no date field and no YYYY-MM-DD filename prefix")
		}
		fm.Date = derived
		fm.Raw["date"] = derived
	}

	return &interfaces.Document{
		FilePath:     filePath,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
	}, nil
}

// dateFromFilename extracts a calendar date from the document's base name.
func dateFromFilename(filePath string) (time.Time, bool) {
	base := path.Base(filepathToSlash(filePath))
	match := datePrefixPattern.FindStringSubmatch(base)
	if match == nil {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", match[1])
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type frontMatterEnvelope struct {
	Title    string         `yaml:"title"`
	Slug     string         `yaml:"slug"`
	Excerpt  string         `yaml:"excerpt"`
	Template string         `yaml:"template"`
	Tags     []string       `yaml:"tags"`
	Author   string         `yaml:"author"`
	Date     time.Time      `yaml:"date"`
	Draft    bool           `yaml:"draft"`
	Custom   map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	raw := make(map[string]any, len(env.Custom)+8)
	for key, value := range env.Custom {
		raw[key] = value
	}

	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Slug != "" {
		raw["slug"] = env.Slug
	}
	if env.Excerpt != "" {
		raw["excerpt"] = env.Excerpt
	}
	if env.Template != "" {
		raw["template"] = env.Template
	}
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	if env.Author != "" {
		raw["author"] = env.Author
	}
	if !env.Date.IsZero() {
		raw["date"] = env.Date
	}
	raw["draft"] = env.Draft

	return interfaces.FrontMatter{
		Title:    env.Title,
		Slug:     env.Slug,
		Excerpt:  env.Excerpt,
		Template: env.Template,
		Tags:     append([]string(nil), env.Tags...),
		Author:   env.Author,
		Date:     env.Date,
		Draft:    env.Draft,
		Custom:   cloneMap(env.Custom),
		Raw:      raw,
	}
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
