// Package mailgen renders notification emails from named templates and a
// context mapping. The heavy lifting lives in the pkg/ packages; this root
// package re-exports the pieces most callers start from.
package mailgen

import (
	"io/fs"

	"github.com/goliatone/go-mailgen/pkg/compose"
	"github.com/goliatone/go-mailgen/pkg/notification"
	"github.com/goliatone/go-mailgen/pkg/template"
)

// EmbeddedTemplates exposes the built-in notification templates so callers
// can reuse or extend them without importing the compose package directly.
func EmbeddedTemplates() fs.FS {
	return compose.TemplatesFS()
}

// New constructs a composer with the built-in engine, templates, and
// renderers. See compose.New for the available options.
func New(options ...compose.Option) (*compose.Composer, error) {
	return compose.New(options...)
}

// Convenience aliases so quick starts only import the root package.
type (
	Composer     = compose.Composer
	Email        = compose.Email
	Sender       = compose.Sender
	Notification = notification.Notification
	User         = notification.User
	Preferences  = notification.Preferences
	Site         = notification.Site
	Context      = template.Context
)
