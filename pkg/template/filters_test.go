package template

import (
	"testing"
)

func TestFilterDefault_MissingAndEmpty(t *testing.T) {
	if got, _ := filterDefault(missingValue{}, "fallback"); got != "fallback" {
		t.Fatalf("missing value should use fallback, got %v", got)
	}
	if got, _ := filterDefault("", "fallback"); got != "fallback" {
		t.Fatalf("empty string should use fallback, got %v", got)
	}
	if got, _ := filterDefault("value", "fallback"); got != "value" {
		t.Fatalf("present value should win, got %v", got)
	}
	if got, _ := filterDefault(missingValue{}, nil); got != "" {
		t.Fatalf("missing value without argument should render empty, got %v", got)
	}
}

func TestFilterStringHelpers(t *testing.T) {
	cases := []struct {
		filter FilterFunc
		in     any
		want   string
	}{
		{filterUpper, "bonjour", "BONJOUR"},
		{filterLower, "BONJOUR", "bonjour"},
		{filterTitle, "new match found", "New Match Found"},
		{filterTitle, "ÉVÉNEMENT à venir", "Événement À Venir"},
		{filterTrim, "  padded  ", "padded"},
		{filterURLEncode, "a b&c", "a+b%26c"},
	}
	for _, tc := range cases {
		got, err := tc.filter(tc.in, nil)
		if err != nil {
			t.Fatalf("filter failed on %v: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("got %q want %q", got, tc.want)
		}
	}
}

func TestFilterTruncateChars(t *testing.T) {
	if got, _ := filterTruncateChars("short", 10); got != "short" {
		t.Fatalf("short input should pass through, got %v", got)
	}
	got, _ := filterTruncateChars("a very long notification message", 10)
	if got != "a very lo…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if _, err := filterTruncateChars("x", "ten"); err == nil {
		t.Fatal("expected error for non-integer argument")
	}
}

func TestFilterEscape_Idempotent(t *testing.T) {
	once, _ := filterEscape("<b>", nil)
	twice, _ := filterEscape(once, nil)
	if once != twice {
		t.Fatalf("escape must not double-escape: %v vs %v", once, twice)
	}
	if string(once.(SafeString)) != "&lt;b&gt;" {
		t.Fatalf("unexpected escape output %v", once)
	}
}

func TestTruthy(t *testing.T) {
	truthy := []any{"x", 1, int64(-3), 0.5, true, []string{"a"}, map[string]any{"k": 1}, SafeString("s")}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Fatalf("expected %#v to be truthy", v)
		}
	}

	falsy := []any{nil, "", 0, int64(0), 0.0, false, []string{}, map[string]any{}, missingValue{}, SafeString("")}
	for _, v := range falsy {
		if Truthy(v) {
			t.Fatalf("expected %#v to be falsy", v)
		}
	}
}

func TestContextLookup_NestedAndMissing(t *testing.T) {
	ctx := Context{
		"notification": map[string]any{
			"title": "Hi",
			"meta":  map[string]string{"kind": "MATCH"},
		},
	}

	if v, ok := ctx.Lookup("notification.title"); !ok || v != "Hi" {
		t.Fatalf("nested lookup failed: %v %v", v, ok)
	}
	if v, ok := ctx.Lookup("notification.meta.kind"); !ok || v != "MATCH" {
		t.Fatalf("string map lookup failed: %v %v", v, ok)
	}
	if _, ok := ctx.Lookup("notification.body"); ok {
		t.Fatal("missing leaf should not resolve")
	}
	if _, ok := ctx.Lookup("user.name"); ok {
		t.Fatal("missing root should not resolve")
	}
	if _, ok := ctx.Lookup("notification.title.length"); ok {
		t.Fatal("traversing a scalar should not resolve")
	}
}
