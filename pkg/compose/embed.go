package compose

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.txt templates/*.html
var embeddedTemplates embed.FS

const (
	// TextTemplateName is the built-in plain-text notification template.
	TextTemplateName = "email_notification.txt"
	// HTMLTemplateName is the built-in HTML notification template.
	HTMLTemplateName = "email_notification.html"
)

// TemplatesFS exposes the embedded notification templates so callers can
// reuse or extend them, for example as the starting point of a custom
// template directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		// Should never happen, but fall back to the raw FS so templates
		// remain reachable under their prefixed names.
		return embeddedTemplates
	}
	return sub
}
