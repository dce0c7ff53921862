package interfaces

import "io"

// TemplateRenderer abstracts the template engine used to produce HTML
// documents. The generator only depends on this contract so hosts can swap
// the default html/template adapter for their own engine.
type TemplateRenderer interface {
	// Render executes the named template against data, returning the rendered
	// output and optionally streaming it into the provided writers.
	Render(name string, data any, out ...io.Writer) (string, error)
	// Lookup reports whether the named template is registered.
	Lookup(name string) bool
}
