package htmltemplate

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// Renderer implements interfaces.TemplateRenderer on top of html/template.
// Templates are loaded lazily on first use and registered under their base
// file name ("post.html", "index.html").
type Renderer struct {
	baseDir string
	fsys    fs.FS
	once    sync.Once
	tpl     *template.Template
	err     error
}

// New returns a renderer that loads templates from the given directory.
func New(baseDir string) (*Renderer, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("htmltemplate: inspect template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("htmltemplate: template path %q is not a directory", baseDir)
	}
	return &Renderer{baseDir: baseDir, fsys: os.DirFS(baseDir)}, nil
}

// NewFromFS returns a renderer backed by an fs.FS, used mostly in tests and
// for embedded template sets.
func NewFromFS(fsys fs.FS) *Renderer {
	return &Renderer{fsys: fsys}
}

func (r *Renderer) ensureTemplates() (*template.Template, error) {
	r.once.Do(func() {
		var files []string
		err := fs.WalkDir(r.fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".html" && ext != ".tmpl" {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			r.err = fmt.Errorf("htmltemplate: walk templates: %w", err)
			return
		}
		if len(files) == 0 {
			location := r.baseDir
			if location == "" {
				location = "template fs"
			}
			r.err = fmt.Errorf("htmltemplate: no templates found in %s", location)
			return
		}

		funcs := template.FuncMap{
			"safeHTML": func(value any) template.HTML {
				switch v := value.(type) {
				case template.HTML:
					return v
				case string:
					return template.HTML(v)
				case fmt.Stringer:
					return template.HTML(v.String())
				default:
					return template.HTML(fmt.Sprint(v))
				}
			},
			"formatDate": func(t time.Time, layout string) string {
				return t.UTC().Format(layout)
			},
			"lower": strings.ToLower,
		}
		r.tpl, r.err = template.New("press").Funcs(funcs).ParseFS(r.fsys, files...)
	})
	return r.tpl, r.err
}

// Render executes the named template, returning the output and optionally
// streaming it to the provided writers.
func (r *Renderer) Render(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return "", err
	}
	target := tpl.Lookup(name)
	if target == nil {
		return "", fmt.Errorf("htmltemplate: template %q not registered", name)
	}

	var builder strings.Builder
	if err := target.Execute(&builder, data); err != nil {
		return "", fmt.Errorf("htmltemplate: execute %q: %w", name, err)
	}
	rendered := builder.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", fmt.Errorf("htmltemplate: stream %q: %w", name, err)
		}
	}
	return rendered, nil
}

// Lookup reports whether the named template is registered.
func (r *Renderer) Lookup(name string) bool {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return false
	}
	return tpl.Lookup(name) != nil
}

var _ interfaces.TemplateRenderer = (*Renderer)(nil)
