package template

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// Mode selects the escaping behaviour of a template. HTML templates escape
// every variable substitution unless the value passed through the safe
// filter; text templates emit values verbatim.
type Mode int

const (
	ModeText Mode = iota
	ModeHTML
)

// SafeString marks a value as exempt from HTML escaping. The safe filter
// produces it; callers can also place one directly into a Context.
type SafeString string

// Template is a parsed, immutable sequence of literal and directive segments.
// A Template can be rendered concurrently from multiple goroutines.
type Template struct {
	name  string
	mode  Mode
	nodes []node
}

// Parse compiles template source in text mode. The name is only used in
// error messages.
func Parse(name, source string) (*Template, error) {
	return ParseMode(name, source, ModeText)
}

// ParseMode compiles template source with an explicit escaping mode.
func ParseMode(name, source string, mode Mode) (*Template, error) {
	p := &parser{name: name, source: source}
	nodes, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &Template{name: name, mode: mode, nodes: nodes}, nil
}

// MustParse is Parse that panics on error. Useful for fixed literals.
func MustParse(name, source string) *Template {
	tpl, err := Parse(name, source)
	if err != nil {
		panic(err)
	}
	return tpl
}

// Name reports the name given at parse time.
func (t *Template) Name() string { return t.name }

// Mode reports the escaping mode given at parse time.
func (t *Template) Mode() Mode { return t.mode }

// Render executes the template against ctx using the real clock and the
// built-in filters.
func (t *Template) Render(ctx Context) (string, error) {
	return t.render(&renderState{ctx: ctx, clock: time.Now, filters: builtinFilters})
}

// renderState carries the per-render environment. It is assembled by the
// owning Set (or by Render's defaults) and never outlives one call.
type renderState struct {
	ctx     Context
	globals Context
	clock   func() time.Time
	filters map[string]FilterFunc
	strict  bool
}

func (s *renderState) lookup(path string) any {
	if value, ok := s.ctx.Lookup(path); ok {
		return value
	}
	if s.globals != nil {
		if value, ok := s.globals.Lookup(path); ok {
			return value
		}
	}
	return missingValue{}
}

func (s *renderState) filter(name string) (FilterFunc, bool) {
	if fn, ok := s.filters[name]; ok {
		return fn, true
	}
	fn, ok := builtinFilters[name]
	return fn, ok
}

func (t *Template) render(state *renderState) (string, error) {
	var sb strings.Builder
	for _, n := range t.nodes {
		if err := n.render(t, state, &sb); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

type node interface {
	render(t *Template, state *renderState, sb *strings.Builder) error
}

type literalNode struct {
	text string
}

func (n *literalNode) render(_ *Template, _ *renderState, sb *strings.Builder) error {
	sb.WriteString(n.text)
	return nil
}

// variableNode is a {{ path|filter:arg|... }} directive.
type variableNode struct {
	line    int
	path    string
	filters []filterCall
}

type filterCall struct {
	name string
	arg  *filterArg
}

// filterArg is either a quoted literal or another context path resolved at
// render time, as in {{ user.first_name|default:user.username }}.
type filterArg struct {
	literal any
	path    string
}

func (a *filterArg) resolve(state *renderState) any {
	if a == nil {
		return nil
	}
	if a.path != "" {
		return materialize(state.lookup(a.path))
	}
	return a.literal
}

func (n *variableNode) render(t *Template, state *renderState, sb *strings.Builder) error {
	value := state.lookup(n.path)

	for _, call := range n.filters {
		fn, ok := state.filter(call.name)
		if !ok {
			return syntaxErr(t.name, n.line, "unknown filter %q", call.name)
		}
		next, err := fn(value, call.arg.resolve(state))
		if err != nil {
			var miss *MissingVariableError
			if errors.As(err, &miss) {
				return &MissingVariableError{Name: t.name, Path: n.path}
			}
			return fmt.Errorf("template: %s: filter %q: %w", t.name, call.name, err)
		}
		value = next
	}

	if _, isMissing := value.(missingValue); isMissing {
		if state.strict {
			return &MissingVariableError{Name: t.name, Path: n.path}
		}
		return nil
	}

	out, safe := stringify(value)
	if t.mode == ModeHTML && !safe {
		out = html.EscapeString(out)
	}
	sb.WriteString(out)
	return nil
}

// ifNode is a {% if expr %} ... {% else %} ... {% endif %} block.
type ifNode struct {
	cond condExpr
	body []node
	alt  []node
}

func (n *ifNode) render(t *Template, state *renderState, sb *strings.Builder) error {
	branch := n.body
	if !n.cond.eval(state) {
		branch = n.alt
	}
	for _, child := range branch {
		if err := child.render(t, state, sb); err != nil {
			return err
		}
	}
	return nil
}

// nowNode is the {% now "Y" %} directive. Only the year format is supported;
// the parser rejects anything else.
type nowNode struct{}

func (n *nowNode) render(_ *Template, state *renderState, sb *strings.Builder) error {
	clock := state.clock
	if clock == nil {
		clock = time.Now
	}
	sb.WriteString(strconv.Itoa(clock().Year()))
	return nil
}

// condExpr is a parsed boolean expression: or-chains of and-chains of
// optionally negated operands. Operands are context paths or literals and
// evaluate through the shared truthiness rules.
type condExpr struct {
	ors []andExpr
}

type andExpr struct {
	terms []condTerm
}

type condTerm struct {
	negate  bool
	path    string
	literal any
}

func (e condExpr) eval(state *renderState) bool {
	for _, group := range e.ors {
		if group.eval(state) {
			return true
		}
	}
	return false
}

func (e andExpr) eval(state *renderState) bool {
	for _, term := range e.terms {
		if !term.eval(state) {
			return false
		}
	}
	return true
}

func (term condTerm) eval(state *renderState) bool {
	var value any
	if term.path != "" {
		value = state.lookup(term.path)
	} else {
		value = term.literal
	}
	result := Truthy(value)
	if term.negate {
		return !result
	}
	return result
}

// materialize replaces the internal missing marker with nil so filter
// arguments and user filters never observe it.
func materialize(value any) any {
	if _, ok := value.(missingValue); ok {
		return nil
	}
	return value
}

// stringify converts a resolved value to its output form. The boolean
// reports whether the value is exempt from HTML escaping.
func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case missingValue:
		return "", false
	case SafeString:
		return string(v), true
	case string:
		return v, false
	case bool:
		return strconv.FormatBool(v), false
	case int:
		return strconv.Itoa(v), false
	case int64:
		return strconv.FormatInt(v, 10), false
	case uint64:
		return strconv.FormatUint(v, 10), false
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), false
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), false
	case time.Time:
		return v.Format(time.RFC3339), false
	case fmt.Stringer:
		return v.String(), false
	}
	return fmt.Sprintf("%v", value), false
}
