package generator

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type sitemapEntry struct {
	Location string
	LastMod  time.Time
}

// buildSitemap renders a sitemap covering the index plus every rendered page.
// Timestamps come from post publish dates, never the wall clock, so repeated
// builds over unchanged input emit identical bytes.
func buildSitemap(baseURL string, pages []RenderedPage, lastMods map[string]time.Time) string {
	base := baseURLWithFallback(baseURL)

	entries := make([]sitemapEntry, 0, len(pages)+1)
	seen := map[string]struct{}{}
	newest := time.Time{}

	for _, page := range pages {
		route := strings.TrimSpace(page.Route)
		if route == "" {
			route = "/"
		}
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}
		location := base + route
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		lastMod := lastMods[page.Slug]
		if lastMod.After(newest) {
			newest = lastMod
		}
		entries = append(entries, sitemapEntry{Location: location, LastMod: lastMod})
	}

	indexLocation := base + "/"
	if _, ok := seen[indexLocation]; !ok {
		entries = append(entries, sitemapEntry{Location: indexLocation, LastMod: newest})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format("2006-01-02")))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

func buildRobots(baseURL string, includeSitemap bool) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	if includeSitemap {
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", baseURLWithFallback(baseURL)))
	}
	return builder.String()
}
