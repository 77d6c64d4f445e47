// Package pongo2adapter exposes a pongo2-backed implementation of the engine
// seam. It exists for callers that maintain their notification templates as
// pongo2 bundles; the built-in engine remains the default because it
// guarantees the lenient missing-variable policy and the injectable clock.
package pongo2adapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-mailgen/pkg/render/engine"
	"github.com/goliatone/go-mailgen/pkg/template"
)

// Option configures the adapter before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	globalData map[string]any
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension sets a default extension appended to template names that
// carry none.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Adapter satisfies the engine contract using a pongo2 template set.
type Adapter struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
}

var _ engine.Engine = (*Adapter)(nil)

// New constructs an Adapter using the provided configuration options.
func New(options ...Option) (*Adapter, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("pongo2adapter: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo2adapter: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	adapter := &Adapter{
		templateSet: pongo2.NewSet("mailgen", loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
	}

	if err := adapter.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("pongo2adapter: apply global data: %w", err)
	}
	return adapter, nil
}

// Render resolves name as inline template content when it contains directive
// markers, otherwise as a template name.
func (a *Adapter) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return a.RenderString(name, data, out...)
	}
	return a.RenderTemplate(name, data, out...)
}

// RenderTemplate renders the named template against data.
func (a *Adapter) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if a == nil || a.templateSet == nil {
		return "", errors.New("pongo2adapter: adapter is nil")
	}
	templatePath := name
	if a.tplExt != "" && !strings.HasSuffix(templatePath, a.tplExt) {
		templatePath += a.tplExt
	}

	tmpl, err := a.getTemplate(templatePath)
	if err != nil {
		return "", err
	}

	viewContext, err := toPongoContext(data)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(viewContext, &buf); err != nil {
		return "", fmt.Errorf("pongo2adapter: execute template %q: %w", name, err)
	}
	return tee(buf.String(), out)
}

// RenderString parses content as a one-off template and renders it.
func (a *Adapter) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if a == nil || a.templateSet == nil {
		return "", errors.New("pongo2adapter: adapter is nil")
	}

	tmpl, err := a.templateSet.FromString(content)
	if err != nil {
		return "", fmt.Errorf("pongo2adapter: parse template string: %w", err)
	}

	viewContext, err := toPongoContext(data)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(viewContext, &buf); err != nil {
		return "", fmt.Errorf("pongo2adapter: execute template string: %w", err)
	}
	return tee(buf.String(), out)
}

// RegisterFilter registers a filter with the process-wide pongo2 registry.
// pongo2 keeps one global filter table, so duplicate names across adapters
// collide by design of the underlying library.
func (a *Adapter) RegisterFilter(name string, fn template.FilterFunc) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return errors.New("pongo2adapter: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "mailgen_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(trimmed) {
		return fmt.Errorf("pongo2adapter: filter %q already exists", trimmed)
	}
	return pongo2.RegisterFilter(trimmed, filter)
}

// GlobalContext merges data into the set-wide globals.
func (a *Adapter) GlobalContext(data any) error {
	if a == nil || a.templateSet == nil {
		return errors.New("pongo2adapter: adapter is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := toPongoContext(data)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.templateSet.Globals == nil {
		a.templateSet.Globals = make(pongo2.Context)
	}
	a.templateSet.Globals.Update(globalCtx)
	return nil
}

func (a *Adapter) getTemplate(path string) (*pongo2.Template, error) {
	a.mu.RLock()
	if tmpl, ok := a.templates[path]; ok {
		a.mu.RUnlock()
		return tmpl, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if tmpl, ok := a.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := a.templateSet.FromFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) ||
			strings.Contains(err.Error(), "no such file") ||
			strings.Contains(err.Error(), "does not exist") {
			return nil, fmt.Errorf("pongo2adapter: load template %q: %w", path, template.ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("pongo2adapter: load template %q: %w", path, err)
	}

	a.templates[path] = tmpl
	return tmpl, nil
}

func tee(rendered string, out []io.Writer) (string, error) {
	for _, w := range out {
		if _, err := w.Write([]byte(rendered)); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func toPongoContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case template.Context:
		return pongo2.Context(v), nil
	case map[string]any:
		return pongo2.Context(v), nil
	default:
		return nil, fmt.Errorf("pongo2adapter: unsupported context type %T", data)
	}
}
