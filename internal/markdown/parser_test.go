package markdown

import (
	"strings"
	"testing"

	"github.com/goliatone/go-press/pkg/interfaces"
)

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_ParseWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("line one\nline two"), interfaces.ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}

	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkParserPreservesCodeFences(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("```kotlin\nval x = 1\n```"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<pre><code") || !strings.Contains(got, "val x = 1") {
		t.Fatalf("expected fenced code block to survive rendering, got %q", got)
	}
}
