package template

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"time"
)

// Option configures a Set before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	globalData map[string]any
	clock      func() time.Time
	strict     bool
	htmlExts   []string
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS, typically an embed.FS.
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

// WithGlobalData seeds context values available to every render. Per-render
// context entries shadow globals on path collisions.
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

// WithClock injects the time source used by the now tag. Defaults to
// time.Now.
func WithClock(clock func() time.Time) Option {
	return func(cfg *config) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithStrictMissing makes every unresolved variable without a default fatal
// instead of rendering empty.
func WithStrictMissing() Option {
	return func(cfg *config) {
		cfg.strict = true
	}
}

// WithHTMLExtensions overrides which template name suffixes select HTML
// escaping mode. Defaults to ".html" and ".htm".
func WithHTMLExtensions(exts ...string) Option {
	return func(cfg *config) {
		cfg.htmlExts = nil
		for _, ext := range exts {
			trimmed := strings.TrimSpace(ext)
			if trimmed == "" {
				continue
			}
			if !strings.HasPrefix(trimmed, ".") {
				trimmed = "." + trimmed
			}
			cfg.htmlExts = append(cfg.htmlExts, trimmed)
		}
	}
}

// Set loads, caches, and renders named templates. Escaping mode is selected
// per template from its name suffix. A Set is safe for concurrent use.
type Set struct {
	mu sync.RWMutex

	fsys     fs.FS
	ext      string
	globals  Context
	clock    func() time.Time
	strict   bool
	htmlExts []string

	filters   map[string]FilterFunc
	templates map[string]*Template
}

// NewSet constructs a Set from the provided options. One of WithBaseDir or
// WithFS is required.
func NewSet(options ...Option) (*Set, error) {
	cfg := &config{
		clock:    time.Now,
		htmlExts: []string{".html", ".htm"},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	fsys := cfg.templates
	if fsys == nil {
		if cfg.baseDir == "" {
			return nil, errors.New("template: need to provide either base dir or fs.FS")
		}
		fsys = os.DirFS(cfg.baseDir)
	}

	set := &Set{
		fsys:      fsys,
		ext:       cfg.extension,
		clock:     cfg.clock,
		strict:    cfg.strict,
		htmlExts:  cfg.htmlExts,
		filters:   make(map[string]FilterFunc),
		templates: make(map[string]*Template),
	}
	if len(cfg.globalData) > 0 {
		set.globals = Context(cfg.globalData)
	}
	return set, nil
}

// Render resolves name as inline template content when it contains directive
// markers, otherwise as a template name. Optional writers receive a copy of
// the output.
func (s *Set) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return s.RenderString(name, data, out...)
	}
	return s.RenderTemplate(name, data, out...)
}

// RenderTemplate renders the named template against data.
func (s *Set) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if s == nil {
		return "", errors.New("template: set is nil")
	}
	tpl, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return s.execute(tpl, data, out...)
}

// RenderString parses content as a one-off text-mode template and renders
// it. The parsed form is not cached.
func (s *Set) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if s == nil {
		return "", errors.New("template: set is nil")
	}
	tpl, err := Parse("", content)
	if err != nil {
		return "", err
	}
	return s.execute(tpl, data, out...)
}

// Get returns the parsed template for name, loading and caching it on first
// use. Unknown names fail with ErrTemplateNotFound.
func (s *Set) Get(name string) (*Template, error) {
	resolved := s.resolveName(name)

	s.mu.RLock()
	if tpl, ok := s.templates[resolved]; ok {
		s.mu.RUnlock()
		return tpl, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if tpl, ok := s.templates[resolved]; ok {
		return tpl, nil
	}

	raw, err := fs.ReadFile(s.fsys, resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("template: load %q: %w", name, ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("template: load %q: %w", name, err)
	}

	tpl, err := ParseMode(resolved, string(raw), s.modeFor(resolved))
	if err != nil {
		return nil, err
	}
	s.templates[resolved] = tpl
	return tpl, nil
}

// Has reports whether the named template can be resolved.
func (s *Set) Has(name string) bool {
	_, err := s.Get(name)
	return err == nil
}

// RegisterFilter adds a render-time filter to this set. Shadowing a built-in
// is allowed; re-registering a set filter is not.
func (s *Set) RegisterFilter(name string, fn FilterFunc) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return errors.New("template: filter name and function required")
	}
	if !validIdentifier(trimmed) {
		return fmt.Errorf("template: invalid filter name %q", trimmed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.filters[trimmed]; exists {
		return fmt.Errorf("%w: %q", errFilterExists, trimmed)
	}
	s.filters[trimmed] = fn
	return nil
}

// GlobalContext merges data into the global context shared by every render.
func (s *Set) GlobalContext(data any) error {
	if data == nil {
		return nil
	}
	ctx, err := toContext(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.globals == nil {
		s.globals = make(Context, len(ctx))
	}
	for key, value := range ctx {
		s.globals[key] = value
	}
	return nil
}

func (s *Set) execute(tpl *Template, data any, out ...io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	state := &renderState{
		ctx:     ctx,
		globals: s.globals,
		clock:   s.clock,
		filters: s.filters,
		strict:  s.strict,
	}
	s.mu.RUnlock()

	rendered, err := tpl.render(state)
	if err != nil {
		return "", err
	}
	for _, w := range out {
		if _, err := w.Write([]byte(rendered)); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (s *Set) resolveName(name string) string {
	if s.ext != "" && path.Ext(name) == "" {
		return name + s.ext
	}
	return name
}

func (s *Set) modeFor(name string) Mode {
	for _, ext := range s.htmlExts {
		if strings.HasSuffix(name, ext) {
			return ModeHTML
		}
	}
	return ModeText
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

// toContext accepts the context shapes callers actually hand over: Context,
// plain maps, or nil.
func toContext(data any) (Context, error) {
	switch v := data.(type) {
	case nil:
		return Context{}, nil
	case Context:
		return v, nil
	case map[string]any:
		return Context(v), nil
	default:
		return nil, fmt.Errorf("template: unsupported context type %T", data)
	}
}
