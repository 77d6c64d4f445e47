package render

import (
	"context"
	"fmt"

	"github.com/goliatone/go-mailgen/pkg/render/engine"
	"github.com/goliatone/go-mailgen/pkg/template"
)

// TextRenderer renders plain-text email bodies. Values pass through
// verbatim; no escaping or sanitization applies.
type TextRenderer struct {
	engine engine.Engine
}

// NewText wraps an engine as the plain-text renderer.
func NewText(eng engine.Engine) *TextRenderer {
	return &TextRenderer{engine: eng}
}

// Name reports the renderer identifier.
func (r *TextRenderer) Name() string { return "text" }

// ContentType reports the MIME type of rendered output.
func (r *TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render executes the named template against data.
func (r *TextRenderer) Render(ctx context.Context, name string, data template.Context, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.engine == nil {
		return nil, fmt.Errorf("render: text renderer has no engine")
	}

	out, err := r.engine.RenderTemplate(name, mergeValues(data, options.Values))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
