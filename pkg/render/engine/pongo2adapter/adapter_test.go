package pongo2adapter

import (
	"strings"
	"testing"
	"testing/fstest"
)

func adapterFS() fstest.MapFS {
	return fstest.MapFS{
		"welcome.txt": &fstest.MapFile{
			Data: []byte("Bienvenue {{ user.username }} sur {{ site_name }}"),
		},
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error when neither base dir nor fs.FS is configured")
	}
}

func TestRenderTemplate_WithGlobals(t *testing.T) {
	adapter, err := New(
		WithFS(adapterFS()),
		WithGlobalData(map[string]any{"site_name": "Findam"}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	out, err := adapter.RenderTemplate("welcome.txt", map[string]any{
		"user": map[string]any{"username": "bob"},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out != "Bienvenue bob sur Findam" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderTemplate_ExtensionAppended(t *testing.T) {
	adapter, err := New(WithFS(adapterFS()), WithExtension("txt"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	out, err := adapter.RenderTemplate("welcome", map[string]any{
		"user":      map[string]any{"username": "bob"},
		"site_name": "Findam",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "Bienvenue bob") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRegisterFilter(t *testing.T) {
	adapter, err := New(WithFS(adapterFS()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = adapter.RegisterFilter("shout_adapter_test", func(value any, _ any) (any, error) {
		s, _ := value.(string)
		return strings.ToUpper(s) + "!", nil
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	// pongo2 keeps one process-wide filter table, so the second attempt
	// must fail instead of silently replacing the first.
	if err := adapter.RegisterFilter("shout_adapter_test", func(value any, _ any) (any, error) {
		return value, nil
	}); err == nil {
		t.Fatal("duplicate registration should fail")
	}

	out, err := adapter.RenderString("{{ name|shout_adapter_test }}", map[string]any{"name": "bob"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out != "BOB!" {
		t.Fatalf("unexpected output %q", out)
	}
}
