package posts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Builder maps loader output onto the post model. It is a pure transform of
// its input: no hidden state survives between Build calls.
type Builder struct {
	logger interfaces.Logger
}

// NewBuilder constructs a Builder. A nil logger falls back to the no-op implementation.
func NewBuilder(logger interfaces.Logger) *Builder {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Builder{logger: logger}
}

// Build converts the loaded documents into a sorted Collection. Slugs are
// collected across the whole input before the uniqueness check runs, so
// callers can load documents in any order (or in parallel) and still get a
// deterministic duplicate verdict.
func (b *Builder) Build(ctx context.Context, docs []*markdown.DocumentResult) (Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collection := make(Collection, 0, len(docs))
	claimed := map[string]string{}

	for _, doc := range docs {
		if doc == nil || doc.Document == nil {
			continue
		}
		post, err := b.buildPost(doc.Document)
		if err != nil {
			return nil, err
		}
		if first, ok := claimed[post.Slug]; ok {
			return nil, duplicateSlug(post.Slug, first, post.SourcePath)
		}
		claimed[post.Slug] = post.SourcePath
		collection = append(collection, post)

		logging.WithDocumentContext(b.logger, post.SourcePath, post.Slug, "").
			Debug("posts.build.mapped")
	}

	collection.Sort()
	b.logger.Info("posts.build.complete", "posts", len(collection))
	return collection, nil
}

func (b *Builder) buildPost(doc *interfaces.Document) (*Post, error) {
	stem := slugStem(doc.FilePath, doc.FrontMatter.Slug)
	slugValue, err := NormalizeSlug(stem)
	if err != nil {
		return nil, invalidPost(doc.FilePath, fmt.Errorf("normalize slug %q: %w", stem, err))
	}

	post := &Post{
		ID:          uuid.NewSHA1(postNamespace, []byte(slugValue)),
		Slug:        slugValue,
		Title:       doc.FrontMatter.Title,
		Excerpt:     doc.FrontMatter.Excerpt,
		Tags:        append([]string(nil), doc.FrontMatter.Tags...),
		PublishDate: doc.FrontMatter.Date,
		Author:      doc.FrontMatter.Author,
		Template:    doc.FrontMatter.Template,
		Draft:       doc.FrontMatter.Draft,
		Body:        doc.Body,
		SourcePath:  doc.FilePath,
		Checksum:    doc.Checksum,
		Custom:      doc.FrontMatter.Custom,
	}

	if err := post.Validate(); err != nil {
		return nil, invalidPost(doc.FilePath, err)
	}
	return post, nil
}
