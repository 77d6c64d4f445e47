// Package compose assembles notification emails: it builds the render
// context from a notification and its recipient, renders the text and HTML
// bodies through the renderer registry, and gates delivery on the
// recipient's preferences.
package compose

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/goliatone/go-mailgen/pkg/notification"
	"github.com/goliatone/go-mailgen/pkg/render"
	"github.com/goliatone/go-mailgen/pkg/render/engine"
	"github.com/goliatone/go-mailgen/pkg/template"
)

// Option customises the composer configuration.
type Option func(*Composer)

// WithSite sets the sending property used for site_name/site_url and the
// From address.
func WithSite(site notification.Site) Option {
	return func(c *Composer) {
		c.site = site
	}
}

// WithEngine injects a custom template engine. When set, WithTemplates and
// WithClock no longer apply; the engine owns its own sources and clock.
func WithEngine(eng engine.Engine) Option {
	return func(c *Composer) {
		c.engine = eng
	}
}

// WithTemplates overrides the template source for the default engine. The
// fs.FS must contain the text and HTML template names the composer renders.
func WithTemplates(fsys fs.FS) Option {
	return func(c *Composer) {
		c.templates = fsys
	}
}

// WithTemplateNames overrides which template names the composer renders for
// the text and HTML bodies.
func WithTemplateNames(text, html string) Option {
	return func(c *Composer) {
		if text != "" {
			c.textTemplate = text
		}
		if html != "" {
			c.htmlTemplate = html
		}
	}
}

// WithRegistry injects a renderer registry. It must resolve the "text" and
// "html" renderer names.
func WithRegistry(registry *render.Registry) Option {
	return func(c *Composer) {
		c.registry = registry
	}
}

// WithClock injects the time source for the year token in the default
// engine. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *Composer) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithSender injects the delivery collaborator used by Deliver. Defaults to
// NopSender.
func WithSender(sender Sender) Option {
	return func(c *Composer) {
		if sender != nil {
			c.sender = sender
		}
	}
}

// Composer renders notification emails. Construct with New; the zero value
// is not usable.
type Composer struct {
	site         notification.Site
	engine       engine.Engine
	templates    fs.FS
	registry     *render.Registry
	clock        func() time.Time
	sender       Sender
	textTemplate string
	htmlTemplate string
}

// New constructs a Composer applying any provided options. Missing
// dependencies are initialised with the built-ins: the embedded French
// templates, the directive engine, and the text/html renderer pair.
func New(options ...Option) (*Composer, error) {
	c := &Composer{
		clock:        time.Now,
		sender:       NopSender,
		textTemplate: TextTemplateName,
		htmlTemplate: HTMLTemplateName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Composer) applyDefaults() error {
	if c.engine == nil {
		fsys := c.templates
		if fsys == nil {
			fsys = TemplatesFS()
		}
		eng, err := template.NewSet(
			template.WithFS(fsys),
			template.WithClock(c.clock),
		)
		if err != nil {
			return fmt.Errorf("compose: build default engine: %w", err)
		}
		c.engine = eng
	}

	if c.registry == nil {
		registry := render.NewRegistry()
		registry.MustRegister(render.NewText(c.engine))
		registry.MustRegister(render.NewHTML(c.engine))
		c.registry = registry
	}
	return nil
}

// Context builds the render context for a notification/recipient pair. It is
// exported so callers driving the renderers directly see exactly what the
// composer feeds them.
func (c *Composer) Context(n notification.Notification, u notification.User) template.Context {
	return template.Context{
		"site_name": c.site.Name,
		"site_url":  c.site.URL,
		"notification": map[string]any{
			"title":       n.Title,
			"message":     n.Message,
			"image_url":   n.ImageURL,
			"action_url":  n.ActionURL,
			"action_text": n.ActionText,
		},
		"user": map[string]any{
			"username":   u.Username,
			"first_name": u.FirstName,
			"email":      u.Email,
		},
	}
}

// Compose renders both email bodies for the notification. The recipient
// needs an email address; the notification must validate.
func (c *Composer) Compose(ctx context.Context, n notification.Notification, u notification.User) (Email, error) {
	if err := n.Validate(); err != nil {
		return Email{}, err
	}
	if u.Email == "" {
		return Email{}, errors.New("compose: recipient has no email address")
	}

	data := c.Context(n, u)

	textRenderer, err := c.registry.Get("text")
	if err != nil {
		return Email{}, err
	}
	htmlRenderer, err := c.registry.Get("html")
	if err != nil {
		return Email{}, err
	}

	text, err := textRenderer.Render(ctx, c.textTemplate, data, render.RenderOptions{})
	if err != nil {
		return Email{}, fmt.Errorf("compose: render text body: %w", err)
	}

	html, err := htmlRenderer.Render(ctx, c.htmlTemplate, data, render.RenderOptions{
		SafeHTMLPaths: []string{"notification.message"},
	})
	if err != nil {
		return Email{}, fmt.Errorf("compose: render html body: %w", err)
	}

	return Email{
		From:    c.site.FromAddress,
		To:      u.Email,
		Subject: n.Title,
		Text:    string(text),
		HTML:    string(html),
	}, nil
}

// Deliver composes the email and hands it to the sender when the recipient's
// preferences allow it. The boolean reports whether a send was attempted;
// a preference opt-out is (false, nil), not an error.
func (c *Composer) Deliver(ctx context.Context, n notification.Notification, u notification.User, prefs notification.Preferences) (bool, error) {
	if !prefs.AllowsEmail(n.Type) {
		return false, nil
	}

	email, err := c.Compose(ctx, n, u)
	if err != nil {
		return false, err
	}
	if err := c.sender.Send(ctx, email); err != nil {
		return false, fmt.Errorf("compose: send email: %w", err)
	}
	return true, nil
}
