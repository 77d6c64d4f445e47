package notification

import "strconv"

// Site describes the sending property. It parameterizes both email templates
// and push payloads.
type Site struct {
	Name        string
	URL         string
	IconURL     string
	FromAddress string
}

// PushPayload shapes a notification into the flat payload push providers
// expect: title/body/icon plus a data envelope carrying the routing fields.
// The click action falls back to the site URL when the notification has no
// action of its own.
func PushPayload(n Notification, site Site) map[string]any {
	clickAction := n.ActionURL
	if clickAction == "" {
		clickAction = site.URL
	}

	return map[string]any{
		"title":        n.Title,
		"body":         n.Message,
		"icon":         site.IconURL,
		"click_action": clickAction,
		"data": map[string]any{
			"notification_type": string(n.Type),
			"context_type":      string(n.ContextType),
			"context_id":        strconv.FormatInt(n.ContextID, 10),
			"action_url":        n.ActionURL,
		},
	}
}
