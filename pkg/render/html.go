package render

import (
	"context"
	"fmt"

	"github.com/goliatone/go-mailgen/pkg/render/engine"
	"github.com/goliatone/go-mailgen/pkg/template"
)

// HTMLRenderer renders HTML email bodies. Context values listed in
// RenderOptions.SafeHTMLPaths are run through the inline-markup sanitizer and
// exempted from escaping, so notification messages may carry limited
// formatting without opening the output to script injection.
type HTMLRenderer struct {
	engine engine.Engine
}

// NewHTML wraps an engine as the HTML renderer.
func NewHTML(eng engine.Engine) *HTMLRenderer {
	return &HTMLRenderer{engine: eng}
}

// Name reports the renderer identifier.
func (r *HTMLRenderer) Name() string { return "html" }

// ContentType reports the MIME type of rendered output.
func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Render executes the named template against data after sanitizing the
// configured safe-HTML paths.
func (r *HTMLRenderer) Render(ctx context.Context, name string, data template.Context, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.engine == nil {
		return nil, fmt.Errorf("render: html renderer has no engine")
	}

	merged := mergeValues(data, options.Values)
	for _, path := range options.SafeHTMLPaths {
		merged = sanitizePath(merged, path)
	}

	out, err := r.engine.RenderTemplate(name, merged)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// sanitizePath replaces the string value at a dotted path with its sanitized
// SafeString form. The containing maps are copied along the way so the
// caller's context stays untouched. Unresolved paths and non-string values
// are left alone.
func sanitizePath(data template.Context, path string) template.Context {
	value, ok := data.Lookup(path)
	if !ok {
		return data
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case template.SafeString:
		raw = string(v)
	default:
		return data
	}

	return setPath(data, path, template.SafeString(SanitizeInline(raw)))
}

func setPath(data template.Context, path string, value any) template.Context {
	segments := splitPath(path)
	if len(segments) == 0 {
		return data
	}

	out := make(template.Context, len(data))
	for k, v := range data {
		out[k] = v
	}

	current := map[string]any(out)
	for _, segment := range segments[:len(segments)-1] {
		child, ok := current[segment].(map[string]any)
		if !ok {
			if ctx, isCtx := current[segment].(template.Context); isCtx {
				child = map[string]any(ctx)
			} else {
				return data
			}
		}
		copied := make(map[string]any, len(child))
		for k, v := range child {
			copied[k] = v
		}
		current[segment] = copied
		current = copied
	}
	current[segments[len(segments)-1]] = value
	return out
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	var segments []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}
	return segments
}
