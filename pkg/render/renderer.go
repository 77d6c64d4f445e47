// Package render defines the renderer contracts used to turn a notification
// context into finished email bodies, plus a registry for discovering
// renderers by name.
package render

import (
	"context"

	"github.com/goliatone/go-mailgen/pkg/template"
)

// Renderer converts a named template plus a context into one output flavour
// (plain text, HTML, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, name string, data template.Context, options RenderOptions) ([]byte, error)
}

// RenderOptions describe per-request data renderers can use without mutating
// the caller's context.
type RenderOptions struct {
	// Values supplies fallback context entries for this render. Entries in
	// the call's own context win on collision.
	Values map[string]any
	// SafeHTMLPaths lists dotted context paths whose string values may carry
	// limited inline markup. The HTML renderer sanitizes these and exempts
	// the result from escaping; other renderers ignore them.
	SafeHTMLPaths []string
}

// mergeValues layers the per-request fallback values under the call context.
func mergeValues(data template.Context, values map[string]any) template.Context {
	if len(values) == 0 {
		return data
	}
	merged := make(template.Context, len(values)+len(data))
	for key, value := range values {
		merged[key] = value
	}
	for key, value := range data {
		merged[key] = value
	}
	return merged
}
