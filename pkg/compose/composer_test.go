package compose

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-mailgen/pkg/notification"
	"github.com/goliatone/go-mailgen/pkg/template"
)

func testSite() notification.Site {
	return notification.Site{
		Name:        "Acme",
		URL:         "https://acme.test",
		FromAddress: "no-reply@acme.test",
	}
}

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC)
	}
}

func testComposer(t *testing.T, options ...Option) *Composer {
	t.Helper()
	base := []Option{WithSite(testSite()), WithClock(fixedClock(2025))}
	composer, err := New(append(base, options...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return composer
}

func TestCompose_GreetingFallsBackToUsername(t *testing.T) {
	composer := testComposer(t)

	email, err := composer.Compose(context.Background(), notification.Notification{
		Type:        notification.TypeSystem,
		ContextType: notification.ContextSystem,
		Title:       "Hi",
		Message:     "Hello there",
	}, notification.User{Username: "bob", Email: "bob@acme.test"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if !strings.Contains(email.Text, "Bonjour bob,") {
		t.Fatalf("expected username greeting, got:\n%s", email.Text)
	}
	if !strings.Contains(email.Text, "Hello there") {
		t.Fatalf("expected message body, got:\n%s", email.Text)
	}
	if !strings.Contains(email.HTML, "Bonjour bob,") {
		t.Fatalf("expected username greeting in HTML, got:\n%s", email.HTML)
	}
}

func TestCompose_GreetingPrefersFirstName(t *testing.T) {
	composer := testComposer(t)

	email, err := composer.Compose(context.Background(), notification.Notification{
		Type:        notification.TypeMatch,
		ContextType: notification.ContextUser,
		Title:       "Nouveau match",
		Message:     "Vous avez un nouveau match !",
	}, notification.User{Username: "bob", FirstName: "Robert", Email: "bob@acme.test"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if !strings.Contains(email.Text, "Bonjour Robert,") {
		t.Fatalf("expected first-name greeting, got:\n%s", email.Text)
	}
}

func TestCompose_ActionBlockOmittedWhenIncomplete(t *testing.T) {
	composer := testComposer(t)

	cases := []struct {
		name string
		url  string
		text string
	}{
		{"no action", "", ""},
		{"url only", "/matches/42/", ""},
		{"text only", "", "Voir le match"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			email, err := composer.Compose(context.Background(), notification.Notification{
				Type:        notification.TypeMatch,
				ContextType: notification.ContextUser,
				Title:       "Nouveau match",
				Message:     "Vous avez un nouveau match !",
				ActionURL:   tc.url,
				ActionText:  tc.text,
			}, notification.User{Username: "bob", Email: "bob@acme.test"})
			if err != nil {
				t.Fatalf("Compose failed: %v", err)
			}
			if strings.Contains(email.Text, "Voir le match") || strings.Contains(email.Text, "/matches/42/") {
				t.Fatalf("action fragment leaked into text body:\n%s", email.Text)
			}
			if strings.Contains(email.HTML, "Voir le match") || strings.Contains(email.HTML, "/matches/42/") {
				t.Fatalf("action fragment leaked into HTML body:\n%s", email.HTML)
			}
		})
	}
}

func TestCompose_ActionBlockRendered(t *testing.T) {
	composer := testComposer(t)

	email, err := composer.Compose(context.Background(), notification.Notification{
		Type:        notification.TypeMatch,
		ContextType: notification.ContextUser,
		Title:       "Nouveau match",
		Message:     "Vous avez un nouveau match !",
		ActionURL:   "/matches/42/",
		ActionText:  "Voir le match",
	}, notification.User{Username: "bob", Email: "bob@acme.test"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if !strings.Contains(email.Text, "Voir le match : https://acme.test/matches/42/") {
		t.Fatalf("expected action line in text body:\n%s", email.Text)
	}
	if !strings.Contains(email.HTML, `href="https://acme.test/matches/42/"`) {
		t.Fatalf("expected action link in HTML body:\n%s", email.HTML)
	}
}

func TestCompose_YearComesFromClock(t *testing.T) {
	composer := testComposer(t, WithClock(fixedClock(2030)))

	email, err := composer.Compose(context.Background(), notification.Notification{
		Type:        notification.TypeSystem,
		ContextType: notification.ContextSystem,
		Title:       "Hi",
		Message:     "Hello there",
	}, notification.User{Username: "bob", Email: "bob@acme.test"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if !strings.Contains(email.Text, "© 2030 Acme") {
		t.Fatalf("expected injected year in text body:\n%s", email.Text)
	}
	if !strings.Contains(email.HTML, "© 2030 Acme") {
		t.Fatalf("expected injected year in HTML body:\n%s", email.HTML)
	}
}

func TestCompose_Idempotent(t *testing.T) {
	composer := testComposer(t)

	n := notification.Notification{
		Type:        notification.TypeMessage,
		ContextType: notification.ContextMessage,
		Title:       "Nouveau message",
		Message:     "Vous avez reçu un nouveau message.",
		ActionURL:   "/messages/7/",
		ActionText:  "Lire le message",
	}
	u := notification.User{Username: "bob", FirstName: "Robert", Email: "bob@acme.test"}

	first, err := composer.Compose(context.Background(), n, u)
	if err != nil {
		t.Fatalf("first Compose failed: %v", err)
	}
	second, err := composer.Compose(context.Background(), n, u)
	if err != nil {
		t.Fatalf("second Compose failed: %v", err)
	}
	if first != second {
		t.Fatalf("compose is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestCompose_HTMLEscapesTitleAndSanitizesMessage(t *testing.T) {
	composer := testComposer(t)

	email, err := composer.Compose(context.Background(), notification.Notification{
		Type:        notification.TypeSystem,
		ContextType: notification.ContextSystem,
		Title:       `<b>titre</b>`,
		Message:     `Bravo <strong>Robert</strong><script>alert("x")</script>`,
	}, notification.User{Username: "bob", Email: "bob@acme.test"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if !strings.Contains(email.HTML, "&lt;b&gt;titre&lt;/b&gt;") {
		t.Fatalf("title should be escaped in HTML body:\n%s", email.HTML)
	}
	if !strings.Contains(email.HTML, "<strong>Robert</strong>") {
		t.Fatalf("inline markup should survive in message:\n%s", email.HTML)
	}
	if strings.Contains(email.HTML, "<script>") {
		t.Fatalf("script leaked into HTML body:\n%s", email.HTML)
	}
	// The text body never interprets markup.
	if !strings.Contains(email.Text, `<strong>Robert</strong>`) {
		t.Fatalf("text body should carry the message verbatim:\n%s", email.Text)
	}
}

func TestCompose_EnvelopeFields(t *testing.T) {
	composer := testComposer(t)

	email, err := composer.Compose(context.Background(), notification.Notification{
		Type:        notification.TypeLike,
		ContextType: notification.ContextUser,
		Title:       "Nouveau like",
		Message:     "Quelqu'un vous a liké.",
	}, notification.User{Username: "bob", Email: "bob@acme.test"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if email.From != "no-reply@acme.test" || email.To != "bob@acme.test" {
		t.Fatalf("unexpected envelope: %+v", email)
	}
	if email.Subject != "Nouveau like" {
		t.Fatalf("subject should be the notification title, got %q", email.Subject)
	}
}

func TestCompose_InvalidInputs(t *testing.T) {
	composer := testComposer(t)

	_, err := composer.Compose(context.Background(), notification.Notification{
		Type:        "POKE",
		ContextType: notification.ContextUser,
		Title:       "t",
		Message:     "m",
	}, notification.User{Username: "bob", Email: "bob@acme.test"})
	if err == nil {
		t.Fatal("invalid notification type should fail")
	}

	_, err = composer.Compose(context.Background(), notification.Notification{
		Type:        notification.TypeSystem,
		ContextType: notification.ContextSystem,
		Title:       "t",
		Message:     "m",
	}, notification.User{Username: "bob"})
	if err == nil {
		t.Fatal("missing recipient email should fail")
	}
}

func TestCompose_CustomTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"email_notification.txt": &fstest.MapFile{
			Data: []byte("Salut {{ user.username }} — {{ notification.title }}"),
		},
		"email_notification.html": &fstest.MapFile{
			Data: []byte("<p>{{ notification.title }}</p>"),
		},
	}
	composer := testComposer(t, WithTemplates(fsys))

	email, err := composer.Compose(context.Background(), notification.Notification{
		Type:        notification.TypeEvent,
		ContextType: notification.ContextEvent,
		Title:       "Soirée",
		Message:     "Un événement approche.",
	}, notification.User{Username: "bob", Email: "bob@acme.test"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if email.Text != "Salut bob — Soirée" {
		t.Fatalf("custom template not used: %q", email.Text)
	}
}

func TestCompose_MissingCustomTemplate(t *testing.T) {
	composer := testComposer(t, WithTemplates(fstest.MapFS{}))

	_, err := composer.Compose(context.Background(), notification.Notification{
		Type:        notification.TypeSystem,
		ContextType: notification.ContextSystem,
		Title:       "t",
		Message:     "m",
	}, notification.User{Username: "bob", Email: "bob@acme.test"})
	if !errors.Is(err, template.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestDeliver_PreferenceGate(t *testing.T) {
	var sent []Email
	composer := testComposer(t, WithSender(SenderFunc(func(_ context.Context, email Email) error {
		sent = append(sent, email)
		return nil
	})))

	n := notification.Notification{
		Type:        notification.TypeLike,
		ContextType: notification.ContextUser,
		Title:       "Nouveau like",
		Message:     "Quelqu'un vous a liké.",
	}
	u := notification.User{Username: "bob", Email: "bob@acme.test"}

	prefs := notification.DefaultPreferences()
	prefs.Likes = false
	delivered, err := composer.Deliver(context.Background(), n, u, prefs)
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if delivered || len(sent) != 0 {
		t.Fatalf("gated delivery should not send, delivered=%v sent=%d", delivered, len(sent))
	}

	prefs.Likes = true
	delivered, err = composer.Deliver(context.Background(), n, u, prefs)
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if !delivered || len(sent) != 1 {
		t.Fatalf("expected one delivery, delivered=%v sent=%d", delivered, len(sent))
	}
	if sent[0].To != "bob@acme.test" {
		t.Fatalf("unexpected recipient %q", sent[0].To)
	}
}

func TestDeliver_SenderErrorPropagates(t *testing.T) {
	sendErr := errors.New("smtp unavailable")
	composer := testComposer(t, WithSender(SenderFunc(func(context.Context, Email) error {
		return sendErr
	})))

	_, err := composer.Deliver(context.Background(), notification.Notification{
		Type:        notification.TypeSystem,
		ContextType: notification.ContextSystem,
		Title:       "t",
		Message:     "m",
	}, notification.User{Username: "bob", Email: "bob@acme.test"}, notification.DefaultPreferences())
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected sender error, got %v", err)
	}
}
