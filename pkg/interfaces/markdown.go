package interfaces

import "time"

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations should be safe for reuse across builds so hosts can share
// a single parser instance without additional locking.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// Document represents a Markdown source file with parsed metadata and content.
// The struct is shared between the interfaces package and internal
// implementations so consumers can depend on a stable contract.
type Document struct {
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	LastModified time.Time
	// Checksum stores a digest of the original file content (SHA-256) so
	// incremental builds can detect changes without re-rendering unchanged
	// documents.
	Checksum []byte
}

// FrontMatter models metadata extracted from Markdown files. The recognised
// keys cover the publishing pipeline's needs while the Custom map keeps
// template- or domain-specific values available to renderers.
type FrontMatter struct {
	Title    string         `yaml:"title" json:"title"`
	Slug     string         `yaml:"slug" json:"slug"`
	Excerpt  string         `yaml:"excerpt" json:"excerpt"`
	Template string         `yaml:"template" json:"template"`
	Tags     []string       `yaml:"tags" json:"tags"`
	Author   string         `yaml:"author" json:"author"`
	Date     time.Time      `yaml:"date" json:"date"`
	Draft    bool           `yaml:"draft" json:"draft"`
	Custom   map[string]any `yaml:",inline" json:"custom"`
	Raw      map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive *bool
	Pattern   string
	Parser    ParseOptions
}
