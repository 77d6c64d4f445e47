package mailgen_test

import (
	"context"
	"strings"
	"testing"

	mailgen "github.com/goliatone/go-mailgen"
	"github.com/goliatone/go-mailgen/pkg/compose"
	"github.com/goliatone/go-mailgen/pkg/notification"
)

func TestQuickStart(t *testing.T) {
	composer, err := mailgen.New(compose.WithSite(mailgen.Site{
		Name: "Acme",
		URL:  "https://acme.test",
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	email, err := composer.Compose(context.Background(), mailgen.Notification{
		Type:        notification.TypeSystem,
		ContextType: notification.ContextSystem,
		Title:       "Hi",
		Message:     "Hello there",
	}, mailgen.User{Username: "bob", Email: "bob@acme.test"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if !strings.Contains(email.Text, "Bonjour bob,") || !strings.Contains(email.Text, "Hello there") {
		t.Fatalf("unexpected text body:\n%s", email.Text)
	}
	if email.Subject != "Hi" {
		t.Fatalf("unexpected subject %q", email.Subject)
	}
}

func TestEmbeddedTemplatesExposeBuiltins(t *testing.T) {
	fsys := mailgen.EmbeddedTemplates()
	for _, name := range []string{compose.TextTemplateName, compose.HTMLTemplateName} {
		if _, err := fsys.Open(name); err != nil {
			t.Fatalf("embedded template %s missing: %v", name, err)
		}
	}
}
