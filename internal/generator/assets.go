package generator

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// copyStaticAssets walks the configured assets filesystem and stages every
// file under assets/ in the output. Files are copied in sorted order so the
// write sequence is reproducible.
func (s *service) copyStaticAssets(ctx context.Context, writer artifactWriter) (int, error) {
	if s.deps.Assets == nil {
		return 0, nil
	}

	var files []string
	walkErr := fs.WalkDir(s.deps.Assets, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, filepath.ToSlash(p))
		return nil
	})
	if walkErr != nil {
		return 0, fmt.Errorf("generator: walk assets: %w", walkErr)
	}
	sort.Strings(files)

	copied := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		data, err := fs.ReadFile(s.deps.Assets, file)
		if err != nil {
			return copied, fmt.Errorf("generator: read asset %s: %w", file, err)
		}
		dest := path.Join("assets", file)
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:        dest,
			Content:     strings.NewReader(string(data)),
			Size:        int64(len(data)),
			Category:    categoryAsset,
			ContentType: detectAssetContentType(dest),
			Checksum:    computeHash(data),
		}); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

func detectAssetContentType(asset string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	switch ext {
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
