package template

import (
	"errors"
	"strconv"
	"strings"
)

// parser walks the raw source once, splitting it into literal runs and
// {{ ... }} / {% ... %} directives. Block tags are matched with an explicit
// stack so unbalanced if/endif pairs surface as syntax errors with the line
// of the offending tag.
type parser struct {
	name   string
	source string
	pos    int
	line   int
}

type blockFrame struct {
	node     *ifNode
	line     int
	inElse   bool
	children *[]node
}

func (p *parser) parse() ([]node, error) {
	p.line = 1
	root := []node{}
	target := &root
	var stack []*blockFrame

	for p.pos < len(p.source) {
		open := p.nextDirective()
		if open < 0 {
			p.appendLiteral(target, p.source[p.pos:])
			p.pos = len(p.source)
			break
		}
		if open > p.pos {
			p.appendLiteral(target, p.source[p.pos:open])
			p.pos = open
		}

		isTag := p.source[p.pos+1] == '%'
		closer := "}}"
		if isTag {
			closer = "%}"
		}
		end := strings.Index(p.source[p.pos+2:], closer)
		if end < 0 {
			return nil, syntaxErr(p.name, p.line, "unclosed directive")
		}
		inner := p.source[p.pos+2 : p.pos+2+end]
		directiveLine := p.line
		p.line += strings.Count(inner, "\n")
		p.pos += 2 + end + 2

		content := strings.TrimSpace(inner)
		if content == "" {
			return nil, syntaxErr(p.name, directiveLine, "empty directive")
		}

		if !isTag {
			variable, err := p.parseVariable(content, directiveLine)
			if err != nil {
				return nil, err
			}
			*target = append(*target, variable)
			continue
		}

		keyword, rest := splitKeyword(content)
		switch keyword {
		case "if":
			cond, err := p.parseCondition(rest, directiveLine)
			if err != nil {
				return nil, err
			}
			block := &ifNode{cond: cond}
			*target = append(*target, block)
			frame := &blockFrame{node: block, line: directiveLine, children: target}
			stack = append(stack, frame)
			target = &block.body
		case "else":
			if len(stack) == 0 {
				return nil, syntaxErr(p.name, directiveLine, "else outside if block")
			}
			frame := stack[len(stack)-1]
			if frame.inElse {
				return nil, syntaxErr(p.name, directiveLine, "duplicate else in if block")
			}
			if rest != "" {
				return nil, syntaxErr(p.name, directiveLine, "unexpected content after else: %q", rest)
			}
			frame.inElse = true
			target = &frame.node.alt
		case "endif":
			if len(stack) == 0 {
				return nil, syntaxErr(p.name, directiveLine, "endif without matching if")
			}
			if rest != "" {
				return nil, syntaxErr(p.name, directiveLine, "unexpected content after endif: %q", rest)
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			target = frame.children
		case "now":
			if err := validateNowFormat(rest); err != nil {
				return nil, syntaxErr(p.name, directiveLine, "%s", err.Error())
			}
			*target = append(*target, &nowNode{})
		default:
			return nil, syntaxErr(p.name, directiveLine, "unknown tag %q", keyword)
		}
	}

	if len(stack) > 0 {
		frame := stack[len(stack)-1]
		return nil, syntaxErr(p.name, frame.line, "unclosed if block")
	}
	return root, nil
}

// nextDirective finds the next "{{" or "{%" at or after the current
// position, whichever comes first.
func (p *parser) nextDirective() int {
	rest := p.source[p.pos:]
	v := strings.Index(rest, "{{")
	t := strings.Index(rest, "{%")
	switch {
	case v < 0 && t < 0:
		return -1
	case v < 0:
		return p.pos + t
	case t < 0:
		return p.pos + v
	case v < t:
		return p.pos + v
	default:
		return p.pos + t
	}
}

func (p *parser) appendLiteral(target *[]node, text string) {
	if text == "" {
		return
	}
	p.line += strings.Count(text, "\n")
	*target = append(*target, &literalNode{text: text})
}

func (p *parser) parseVariable(content string, line int) (*variableNode, error) {
	parts, err := splitFilters(content)
	if err != nil {
		return nil, syntaxErr(p.name, line, "%s", err.Error())
	}

	path := strings.TrimSpace(parts[0])
	if !validPath(path) {
		return nil, syntaxErr(p.name, line, "invalid variable path %q", path)
	}

	variable := &variableNode{line: line, path: path}
	for _, raw := range parts[1:] {
		call, err := p.parseFilterCall(raw, line)
		if err != nil {
			return nil, err
		}
		variable.filters = append(variable.filters, call)
	}
	return variable, nil
}

func (p *parser) parseFilterCall(raw string, line int) (filterCall, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return filterCall{}, syntaxErr(p.name, line, "empty filter in chain")
	}

	name := raw
	var argText string
	if idx := strings.Index(raw, ":"); idx >= 0 {
		name = strings.TrimSpace(raw[:idx])
		argText = strings.TrimSpace(raw[idx+1:])
		if argText == "" {
			return filterCall{}, syntaxErr(p.name, line, "filter %q has an empty argument", name)
		}
	}
	if !validIdentifier(name) {
		return filterCall{}, syntaxErr(p.name, line, "invalid filter name %q", name)
	}

	call := filterCall{name: name}
	if argText != "" {
		arg, err := p.parseOperandValue(argText, line)
		if err != nil {
			return filterCall{}, err
		}
		call.arg = arg
	}
	return call, nil
}

// parseOperandValue handles quoted strings, numbers, and context paths; it is
// shared between filter arguments and condition operands.
func (p *parser) parseOperandValue(text string, line int) (*filterArg, error) {
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'') {
		quote := text[0]
		if text[len(text)-1] != quote {
			return nil, syntaxErr(p.name, line, "unterminated string literal %s", text)
		}
		return &filterArg{literal: text[1 : len(text)-1]}, nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &filterArg{literal: int(n)}, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return &filterArg{literal: f}, nil
	}
	switch text {
	case "true":
		return &filterArg{literal: true}, nil
	case "false":
		return &filterArg{literal: false}, nil
	}
	if !validPath(text) {
		return nil, syntaxErr(p.name, line, "invalid operand %q", text)
	}
	return &filterArg{path: text}, nil
}

// parseCondition parses "a and not b or c" into its or/and tree. Operator
// precedence follows the usual rules: not binds tightest, then and, then or.
func (p *parser) parseCondition(text string, line int) (condExpr, error) {
	if strings.TrimSpace(text) == "" {
		return condExpr{}, syntaxErr(p.name, line, "if tag needs a condition")
	}

	tokens := strings.Fields(text)
	expr := condExpr{}
	current := andExpr{}
	expectOperand := true
	negateNext := false

	flushGroup := func() error {
		if len(current.terms) == 0 {
			return syntaxErr(p.name, line, "dangling operator in condition %q", text)
		}
		expr.ors = append(expr.ors, current)
		current = andExpr{}
		return nil
	}

	for _, token := range tokens {
		switch token {
		case "and":
			if expectOperand {
				return condExpr{}, syntaxErr(p.name, line, "misplaced %q in condition", token)
			}
			expectOperand = true
		case "or":
			if expectOperand {
				return condExpr{}, syntaxErr(p.name, line, "misplaced %q in condition", token)
			}
			if err := flushGroup(); err != nil {
				return condExpr{}, err
			}
			expectOperand = true
		case "not":
			if !expectOperand {
				return condExpr{}, syntaxErr(p.name, line, "misplaced %q in condition", token)
			}
			negateNext = !negateNext
		default:
			if !expectOperand {
				return condExpr{}, syntaxErr(p.name, line, "expected operator before %q", token)
			}
			operand, err := p.parseOperandValue(token, line)
			if err != nil {
				return condExpr{}, err
			}
			current.terms = append(current.terms, condTerm{
				negate:  negateNext,
				path:    operand.path,
				literal: operand.literal,
			})
			negateNext = false
			expectOperand = false
		}
	}

	if expectOperand {
		return condExpr{}, syntaxErr(p.name, line, "condition %q ends with an operator", text)
	}
	if err := flushGroup(); err != nil {
		return condExpr{}, err
	}
	return expr, nil
}

// validateNowFormat accepts the year format the templates use. The argument
// is required so a bare {% now %} fails loudly instead of guessing.
func validateNowFormat(rest string) error {
	trimmed := strings.TrimSpace(rest)
	if trimmed == `"Y"` || trimmed == `'Y'` {
		return nil
	}
	return errors.New(`now tag supports only the "Y" year format`)
}

func splitKeyword(content string) (string, string) {
	if idx := strings.IndexAny(content, " \t"); idx >= 0 {
		return content[:idx], strings.TrimSpace(content[idx+1:])
	}
	return content, ""
}

// splitFilters splits a variable directive on pipes, leaving quoted
// arguments intact.
func splitFilters(content string) ([]string, error) {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '|':
			parts = append(parts, content[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated string literal in directive")
	}
	parts = append(parts, content[start:])
	return parts, nil
}

func validPath(path string) bool {
	if path == "" {
		return false
	}
	for _, segment := range strings.Split(path, ".") {
		if !validIdentifier(segment) {
			return false
		}
	}
	return true
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
