package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func scaffoldSite(t *testing.T) (contentDir, templatesDir, outputDir string) {
	t.Helper()
	root := t.TempDir()
	contentDir = filepath.Join(root, "content")
	templatesDir = filepath.Join(root, "templates")
	outputDir = filepath.Join(root, "dist")

	writeFile(t, filepath.Join(contentDir, "2020-06-15-first-post.md"),
		"---\ntitle: First Post\ntags: [notes]\n---\n\nHello world.\n")
	writeFile(t, filepath.Join(templatesDir, "post.html"),
		`<article><h1>{{.Post.Title}}</h1>{{.Post.HTML}}</article>`)
	writeFile(t, filepath.Join(templatesDir, "index.html"),
		`<ul>{{range .Posts}}<li>{{.Title}}</li>{{end}}</ul>`)
	writeFile(t, filepath.Join(templatesDir, "tag.html"),
		`<h1>{{.Tag}}</h1>`)
	return contentDir, templatesDir, outputDir
}

func TestRunBuildWritesSite(t *testing.T) {
	contentDir, templatesDir, outputDir := scaffoldSite(t)

	err := runBuild([]string{
		"--input", contentDir,
		"--templates", templatesDir,
		"--output", outputDir,
		"--base-url", "https://example.com",
		"--title", "Example Journal",
	})
	if err != nil {
		t.Fatalf("run build: %v", err)
	}

	page, err := os.ReadFile(filepath.Join(outputDir, "2020-06-15-first-post", "index.html"))
	if err != nil {
		t.Fatalf("read post page: %v", err)
	}
	if !strings.Contains(string(page), "<h1>First Post</h1>") {
		t.Errorf("unexpected page content: %q", page)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "tags", "notes", "index.html")); err != nil {
		t.Errorf("expected tag page: %v", err)
	}
}

func TestRunDiffWritesNothing(t *testing.T) {
	contentDir, templatesDir, outputDir := scaffoldSite(t)

	err := runDiff([]string{
		"--input", contentDir,
		"--templates", templatesDir,
		"--output", outputDir,
	})
	if err != nil {
		t.Fatalf("run diff: %v", err)
	}
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Error("diff must not write output")
	}
}

func TestRunCleanRemovesOutput(t *testing.T) {
	contentDir, templatesDir, outputDir := scaffoldSite(t)

	if err := runBuild([]string{
		"--input", contentDir,
		"--templates", templatesDir,
		"--output", outputDir,
	}); err != nil {
		t.Fatalf("run build: %v", err)
	}
	if err := runClean([]string{
		"--input", contentDir,
		"--templates", templatesDir,
		"--output", outputDir,
	}); err != nil {
		t.Fatalf("run clean: %v", err)
	}
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Error("clean should remove the output directory")
	}
}
