package generator

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/posts"
)

const maxFeedItems = 100

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	PublishedAt time.Time
}

// buildFeedItems projects the collection into feed entries, newest first,
// capped at maxFeedItems. The collection is already sorted, so the cap keeps
// the most recent posts.
func (s *service) buildFeedItems(collection posts.Collection) []feedItem {
	items := make([]feedItem, 0, len(collection))
	for _, post := range collection {
		items = append(items, feedItem{
			Title:       post.Title,
			Summary:     normalizeWhitespace(post.Excerpt),
			Link:        absoluteURL(s.cfg.BaseURL, postRoute(post.Slug)),
			GUID:        absoluteURL(s.cfg.BaseURL, postRoute(post.Slug)),
			PublishedAt: post.PublishDate,
		})
		if len(items) == maxFeedItems {
			break
		}
	}
	return items
}

func (s *service) writeFeeds(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	items []feedItem,
) error {
	if len(items) == 0 {
		return nil
	}
	// The newest publish date stands in for the build instant so feed output
	// stays deterministic.
	updated := items[0].PublishedAt

	rssContent := buildRSSFeed(siteMeta, items, updated)
	if err := writer.WriteFile(ctx, writeFileRequest{
		Path:        "feed.xml",
		Content:     strings.NewReader(rssContent),
		Size:        int64(len(rssContent)),
		Category:    categoryFeed,
		ContentType: "application/rss+xml",
		Checksum:    computeHashFromString(rssContent),
	}); err != nil {
		return err
	}

	atomContent := buildAtomFeed(siteMeta, items, updated)
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        "feed.atom.xml",
		Content:     strings.NewReader(atomContent),
		Size:        int64(len(atomContent)),
		Category:    categoryFeed,
		ContentType: "application/atom+xml",
		Checksum:    computeHashFromString(atomContent),
	})
}

func buildRSSFeed(site SiteMetadata, items []feedItem, updated time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(feedTitle(site))))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(baseLink)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(feedDescription(site))))
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", updated.UTC().Format(time.RFC1123Z)))
	for _, item := range items {
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid>%s</guid>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", item.PublishedAt.UTC().Format(time.RFC1123Z)))
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

func buildAtomFeed(site SiteMetadata, items []feedItem, updated time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)
	feedID := baseLink + "/feed.atom.xml"

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(feedID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(feedTitle(site))))
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXMLAttr(baseLink)))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXMLAttr(feedID)))
	for _, item := range items {
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>%s</id>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXMLAttr(item.Link)))
		builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func feedTitle(site SiteMetadata) string {
	if title := strings.TrimSpace(site.Title); title != "" {
		return title
	}
	base := strings.TrimSpace(site.BaseURL)
	if base != "" {
		return base
	}
	return "Press Feed"
}

func feedDescription(site SiteMetadata) string {
	if desc := strings.TrimSpace(site.Description); desc != "" {
		return desc
	}
	return "Latest posts"
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		return targetBase
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

func escapeXMLAttr(value string) string {
	return html.EscapeString(value)
}
