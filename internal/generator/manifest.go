package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const (
	manifestFileName    = ".press-manifest.json"
	manifestFileVersion = 1
)

// buildManifest stores metadata about the last successful build so incremental
// runs can skip unchanged posts. It contains no wall-clock values; the
// manifest for unchanged input is byte-identical across runs.
type buildManifest struct {
	Version int                     `json:"version"`
	Posts   map[string]manifestPost `json:"posts"`
}

type manifestPost struct {
	Slug        string    `json:"slug"`
	Route       string    `json:"route"`
	Output      string    `json:"output"`
	Template    string    `json:"template"`
	Source      string    `json:"source"`
	SourceHash  string    `json:"source_hash"`
	Checksum    string    `json:"checksum"`
	PublishDate time.Time `json:"publish_date"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Posts:   map[string]manifestPost{},
	}
}

// manifestDocument is the on-disk shape: a sorted array keeps the file
// deterministic, the in-memory map keeps lookups cheap.
type manifestDocument struct {
	Version int            `json:"version"`
	Posts   []manifestPost `json:"posts"`
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var doc manifestDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	manifest := newBuildManifest()
	if doc.Version != 0 {
		manifest.Version = doc.Version
	}
	for _, entry := range doc.Posts {
		manifest.set(entry)
	}
	return manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	// Stable ordering for deterministic output.
	ordered := manifestDocument{Version: m.Version}
	if ordered.Version == 0 {
		ordered.Version = manifestFileVersion
	}
	if len(m.Posts) > 0 {
		ordered.Posts = make([]manifestPost, 0, len(m.Posts))
		for _, entry := range m.Posts {
			ordered.Posts = append(ordered.Posts, entry)
		}
		sort.Slice(ordered.Posts, func(i, j int) bool {
			return ordered.Posts[i].Slug < ordered.Posts[j].Slug
		})
	}
	return json.MarshalIndent(ordered, "", "  ")
}

func (m *buildManifest) lookup(slug string) (manifestPost, bool) {
	if m == nil || len(m.Posts) == 0 {
		return manifestPost{}, false
	}
	entry, ok := m.Posts[slug]
	return entry, ok
}

func (m *buildManifest) set(entry manifestPost) {
	if m == nil {
		return
	}
	if m.Posts == nil {
		m.Posts = map[string]manifestPost{}
	}
	m.Posts[entry.Slug] = entry
}

func (m *buildManifest) shouldSkip(slug, sourceHash, output string) bool {
	entry, ok := m.lookup(slug)
	if !ok {
		return false
	}
	if entry.SourceHash != sourceHash {
		return false
	}
	return entry.Output == output
}
