package generator

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-press/internal/posts"
)

func TestBuildFeedItems(t *testing.T) {
	svc := &service{cfg: Config{BaseURL: "https://example.com"}}
	collection := posts.Collection{
		{
			Slug:        "multiplatform-retrospective",
			Title:       "Multiplatform Retrospective",
			Excerpt:     "A year of   sharing code",
			PublishDate: time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			Slug:        "understanding-android-savedstate",
			Title:       "Understanding Android SavedState",
			PublishDate: time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	items := svc.buildFeedItems(collection)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Multiplatform Retrospective" {
		t.Errorf("newest post should come first, got %q", items[0].Title)
	}
	if items[0].Link != "https://example.com/multiplatform-retrospective/" {
		t.Errorf("unexpected link %q", items[0].Link)
	}
	if items[0].Summary != "A year of sharing code" {
		t.Errorf("summary whitespace should be collapsed, got %q", items[0].Summary)
	}
}

func TestBuildRSSFeed(t *testing.T) {
	site := SiteMetadata{Title: "Example & Journal", BaseURL: "https://example.com"}
	updated := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	items := []feedItem{
		{
			Title:       "Tips & Tricks",
			Link:        "https://example.com/tips-and-tricks/",
			GUID:        "https://example.com/tips-and-tricks/",
			Summary:     "A <short> summary",
			PublishedAt: updated,
		},
	}

	feed := buildRSSFeed(site, items, updated)

	if !strings.Contains(feed, "<title>Example &amp; Journal</title>") {
		t.Errorf("channel title should be escaped:\n%s", feed)
	}
	if !strings.Contains(feed, "<title>Tips &amp; Tricks</title>") {
		t.Errorf("item title should be escaped:\n%s", feed)
	}
	if !strings.Contains(feed, "<description>A &lt;short&gt; summary</description>") {
		t.Errorf("summary should be escaped:\n%s", feed)
	}
	if !strings.Contains(feed, "<pubDate>Mon, 15 Jun 2020 00:00:00 +0000</pubDate>") {
		t.Errorf("pubDate should be RFC1123Z in UTC:\n%s", feed)
	}
}

func TestBuildAtomFeed(t *testing.T) {
	site := SiteMetadata{Title: "Example Journal", BaseURL: "https://example.com"}
	updated := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	items := []feedItem{
		{
			Title:       "First Post",
			Link:        "https://example.com/first-post/",
			GUID:        "https://example.com/first-post/",
			PublishedAt: updated,
		},
	}

	feed := buildAtomFeed(site, items, updated)

	if !strings.Contains(feed, `<feed xmlns="http://www.w3.org/2005/Atom">`) {
		t.Errorf("missing atom namespace:\n%s", feed)
	}
	if !strings.Contains(feed, "<updated>2020-06-15T00:00:00Z</updated>") {
		t.Errorf("feed updated should mirror newest post:\n%s", feed)
	}
	if !strings.Contains(feed, `<link href="https://example.com/first-post/" />`) {
		t.Errorf("missing entry link:\n%s", feed)
	}
}
