package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type writeCategory string

const (
	categoryPage     writeCategory = "page"
	categoryIndex    writeCategory = "index"
	categoryTag      writeCategory = "tag"
	categoryAsset    writeCategory = "asset"
	categoryFeed     writeCategory = "feed"
	categorySitemap  writeCategory = "sitemap"
	categoryRobots   writeCategory = "robots"
	categoryManifest writeCategory = "manifest"
)

// writeFileRequest describes a file write operation routed through the artifact writer.
type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    writeCategory
	ContentType string
	Checksum    string
}

// artifactWriter abstracts output specifics for generator artifacts.
type artifactWriter interface {
	WriteFile(ctx context.Context, req writeFileRequest) error
}

// stagingWriter accumulates a build under a temporary directory so a failed
// run never leaves partially-written output behind. Commit swaps the staged
// tree into place with renames; Discard removes the staging area.
type stagingWriter struct {
	outputDir string
	stageDir  string
}

func newStagingWriter(outputDir string) (*stagingWriter, error) {
	trimmed := strings.TrimSpace(outputDir)
	if trimmed == "" {
		return nil, errors.New("generator: output directory is required")
	}
	outputDir = filepath.Clean(trimmed)
	parent := filepath.Dir(outputDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("generator: prepare output parent %s: %w", parent, err)
	}
	stage, err := os.MkdirTemp(parent, ".press-stage-*")
	if err != nil {
		return nil, fmt.Errorf("generator: create staging directory: %w", err)
	}
	return &stagingWriter{outputDir: outputDir, stageDir: stage}, nil
}

func (w *stagingWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}

	full := filepath.Join(w.stageDir, filepath.FromSlash(req.Path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("generator: prepare dir for %s: %w", req.Path, err)
	}

	out, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("generator: create %s: %w", req.Path, err)
	}
	if _, err := io.Copy(out, req.Content); err != nil {
		out.Close()
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("generator: close %s: %w", req.Path, err)
	}
	return nil
}

// Commit atomically replaces the output directory with the staged tree. The
// prior output is moved aside first so the swap is two renames, not a
// recursive copy.
func (w *stagingWriter) Commit() error {
	previous := ""
	if _, err := os.Stat(w.outputDir); err == nil {
		previous = w.outputDir + ".previous"
		// A leftover .previous from a crashed run is stale output.
		if err := os.RemoveAll(previous); err != nil {
			return fmt.Errorf("generator: clear stale output %s: %w", previous, err)
		}
		if err := os.Rename(w.outputDir, previous); err != nil {
			return fmt.Errorf("generator: move prior output aside: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("generator: stat output %s: %w", w.outputDir, err)
	}

	if err := os.Rename(w.stageDir, w.outputDir); err != nil {
		if previous != "" {
			// Best effort restore of the prior output.
			_ = os.Rename(previous, w.outputDir)
		}
		return fmt.Errorf("generator: publish staged output: %w", err)
	}
	if previous != "" {
		if err := os.RemoveAll(previous); err != nil {
			return fmt.Errorf("generator: remove prior output %s: %w", previous, err)
		}
	}
	return nil
}

// Discard removes the staging area without touching prior output.
func (w *stagingWriter) Discard() {
	_ = os.RemoveAll(w.stageDir)
}

// PriorFile reads a file from the existing output directory so unchanged
// pages can be re-staged without rendering. Missing files are not an error.
func (w *stagingWriter) PriorFile(path string) ([]byte, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil, errors.New("generator: prior file requires path")
	}
	data, err := os.ReadFile(filepath.Join(w.outputDir, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("generator: read prior file %s: %w", path, err)
	}
	return data, nil
}

// ReadPriorManifest loads the manifest file from the existing output
// directory, if one exists. Missing files are not an error.
func (w *stagingWriter) ReadPriorManifest() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(w.outputDir, manifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	return data, nil
}
