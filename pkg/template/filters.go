package template

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FilterFunc transforms a resolved value inside a {{ path|filter:arg }}
// chain. The param is nil when the filter was invoked without an argument.
// Returning an error aborts the render.
type FilterFunc func(value any, param any) (any, error)

// builtinFilters covers the filters the notification templates rely on plus
// the usual string helpers. Sets can shadow any of these per instance.
var builtinFilters = map[string]FilterFunc{
	"default":       filterDefault,
	"required":      filterRequired,
	"upper":         filterUpper,
	"lower":         filterLower,
	"title":         filterTitle,
	"trim":          filterTrim,
	"safe":          filterSafe,
	"escape":        filterEscape,
	"urlencode":     filterURLEncode,
	"truncatechars": filterTruncateChars,
}

// filterDefault substitutes the argument whenever the incoming value is
// falsy, covering both missing paths and present-but-empty values, which is
// how the greeting falls back from first_name to username.
func filterDefault(value any, param any) (any, error) {
	if Truthy(value) {
		return value, nil
	}
	if param == nil {
		return "", nil
	}
	return param, nil
}

// filterRequired turns a falsy value into a MissingVariableError. The caller
// fills in template name and path.
func filterRequired(value any, _ any) (any, error) {
	if !Truthy(value) {
		return nil, &MissingVariableError{}
	}
	return value, nil
}

func filterUpper(value any, _ any) (any, error) {
	s, _ := stringify(value)
	return strings.ToUpper(s), nil
}

func filterLower(value any, _ any) (any, error) {
	s, _ := stringify(value)
	return strings.ToLower(s), nil
}

func filterTitle(value any, _ any) (any, error) {
	s, _ := stringify(value)
	var sb strings.Builder
	sb.Grow(len(s))
	startOfWord := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			startOfWord = true
			sb.WriteRune(r)
			continue
		}
		if startOfWord {
			sb.WriteRune(unicode.ToUpper(r))
			startOfWord = false
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

func filterTrim(value any, _ any) (any, error) {
	s, _ := stringify(value)
	return strings.TrimSpace(s), nil
}

// filterSafe marks the value as already-escaped so HTML templates emit it
// verbatim.
func filterSafe(value any, _ any) (any, error) {
	s, _ := stringify(value)
	return SafeString(s), nil
}

// filterEscape escapes immediately and marks the result safe, so double
// escaping cannot happen in HTML mode.
func filterEscape(value any, _ any) (any, error) {
	s, safe := stringify(value)
	if safe {
		return SafeString(s), nil
	}
	return SafeString(html.EscapeString(s)), nil
}

func filterURLEncode(value any, _ any) (any, error) {
	s, _ := stringify(value)
	return url.QueryEscape(s), nil
}

func filterTruncateChars(value any, param any) (any, error) {
	limit, ok := param.(int)
	if !ok || limit < 0 {
		return nil, fmt.Errorf("truncatechars needs a non-negative integer argument, got %v", param)
	}
	s, _ := stringify(value)
	if utf8.RuneCountInString(s) <= limit {
		return s, nil
	}
	runes := []rune(s)
	if limit == 0 {
		return "…", nil
	}
	return string(runes[:limit-1]) + "…", nil
}

var errFilterExists = errors.New("template: filter already registered")
