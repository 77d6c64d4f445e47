// Package engine defines the template-engine seam that renderers and the
// composer depend on, so the built-in directive engine and the pongo2 adapter
// stay interchangeable.
package engine

import (
	"io"

	"github.com/goliatone/go-mailgen/pkg/template"
)

// Engine abstracts a named-template backend. The built-in
// template.Set satisfies it out of the box; engine/pongo2adapter wraps a
// pongo2 template set behind the same contract for callers that already have
// pongo2 bundles.
type Engine interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(content string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn template.FilterFunc) error
	GlobalContext(data any) error
}

// Ensure the built-in engine keeps satisfying the seam.
var _ Engine = (*template.Set)(nil)
