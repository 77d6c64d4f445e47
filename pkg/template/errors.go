package template

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound is returned when a named template cannot be resolved
// against the configured source. Callers can test for it with errors.Is.
var ErrTemplateNotFound = errors.New("template: template not found")

// SyntaxError reports a malformed directive. Line numbers are 1-based and
// refer to the template source handed to Parse.
type SyntaxError struct {
	Name string
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("template: line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("template: %s:%d: %s", e.Name, e.Line, e.Msg)
}

// MissingVariableError reports a variable that resolved to nothing while the
// template demanded a value, either through the required filter or a strict
// render. Plain references without a default are non-fatal and render empty.
type MissingVariableError struct {
	Name string
	Path string
}

func (e *MissingVariableError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("template: missing required variable %q", e.Path)
	}
	return fmt.Sprintf("template: %s: missing required variable %q", e.Name, e.Path)
}

func syntaxErr(name string, line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Name: name, Line: line, Msg: fmt.Sprintf(format, args...)}
}
