package posts

import (
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// postNamespace seeds deterministic post identifiers so repeated builds over
// unchanged input produce identical IDs.
var postNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("github.com/goliatone/go-press"))

// Post is one article in the corpus. Instances are created by the builder and
// held immutably through rendering; nothing mutates a Post after Build returns.
type Post struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Excerpt     string
	Tags        []string
	PublishDate time.Time
	Author      string
	Template    string
	Draft       bool
	Body        []byte
	SourcePath  string
	Checksum    []byte
	Custom      map[string]any
}

// Validate enforces the post invariants: slug and title present, at least one
// tag, and a valid publish date.
func (p Post) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Slug, validation.Required),
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Tags, validation.Required, validation.Length(1, 0)),
		validation.Field(&p.PublishDate, validation.Required),
	)
}

// HasTag reports whether the post carries the given tag (case-insensitive).
func (p *Post) HasTag(tag string) bool {
	for _, candidate := range p.Tags {
		if strings.EqualFold(candidate, tag) {
			return true
		}
	}
	return false
}

// Collection is an ordered sequence of posts, publish date descending with
// slug-ascending tie breaks. It is rebuilt wholesale on each pipeline run.
type Collection []*Post

// Sort orders the collection by publish date descending. Ties are broken by
// slug so the ordering is total and runs are deterministic.
func (c Collection) Sort() {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].PublishDate.Equal(c[j].PublishDate) {
			return c[i].Slug < c[j].Slug
		}
		return c[i].PublishDate.After(c[j].PublishDate)
	})
}

// WithoutDrafts returns the subset of posts not marked as drafts, preserving order.
func (c Collection) WithoutDrafts() Collection {
	out := make(Collection, 0, len(c))
	for _, post := range c {
		if !post.Draft {
			out = append(out, post)
		}
	}
	return out
}

// ByTag returns the posts carrying the given tag, preserving order.
func (c Collection) ByTag(tag string) Collection {
	out := make(Collection, 0, len(c))
	for _, post := range c {
		if post.HasTag(tag) {
			out = append(out, post)
		}
	}
	return out
}

// Tags returns the distinct tags across the collection, sorted ascending.
// Tag order inside a post is irrelevant; the output here is canonical.
func (c Collection) Tags() []string {
	seen := map[string]struct{}{}
	for _, post := range c {
		for _, tag := range post.Tags {
			key := strings.ToLower(strings.TrimSpace(tag))
			if key == "" {
				continue
			}
			seen[key] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
