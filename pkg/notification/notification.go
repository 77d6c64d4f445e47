// Package notification holds the value types the rendering pipeline
// consumes: the notification itself, the recipient, and the recipient's
// delivery preferences. Storage and transport live with the caller.
package notification

import (
	"fmt"
	"strings"
	"time"
)

// Type classifies what happened. The zero value is invalid.
type Type string

const (
	TypeMatch        Type = "MATCH"
	TypeMessage      Type = "MESSAGE"
	TypeLike         Type = "LIKE"
	TypeEvent        Type = "EVENT"
	TypeSubscription Type = "SUBSCRIPTION"
	TypeSystem       Type = "SYSTEM"
)

// ContextType names the kind of entity the notification points at.
type ContextType string

const (
	ContextUser         ContextType = "USER"
	ContextEvent        ContextType = "EVENT"
	ContextMessage      ContextType = "MESSAGE"
	ContextSubscription ContextType = "SUBSCRIPTION"
	ContextSystem       ContextType = "SYSTEM"
)

var validTypes = map[Type]struct{}{
	TypeMatch:        {},
	TypeMessage:      {},
	TypeLike:         {},
	TypeEvent:        {},
	TypeSubscription: {},
	TypeSystem:       {},
}

var validContexts = map[ContextType]struct{}{
	ContextUser:         {},
	ContextEvent:        {},
	ContextMessage:      {},
	ContextSubscription: {},
	ContextSystem:       {},
}

// Notification carries everything a template needs to describe one event to
// one recipient. ActionURL and ActionText are optional as a pair: templates
// only render the action block when both are present.
type Notification struct {
	Type        Type
	ContextType ContextType
	ContextID   int64
	ActorID     int64
	Title       string
	Message     string
	ImageURL    string
	ActionURL   string
	ActionText  string
	CreatedAt   time.Time
}

// Validate checks the enum fields and the required title/message pair.
func (n Notification) Validate() error {
	if _, ok := validTypes[n.Type]; !ok {
		return fmt.Errorf("notification: invalid type %q", n.Type)
	}
	if _, ok := validContexts[n.ContextType]; !ok {
		return fmt.Errorf("notification: invalid context type %q", n.ContextType)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("notification: title is required")
	}
	if strings.TrimSpace(n.Message) == "" {
		return fmt.Errorf("notification: message is required")
	}
	return nil
}

// HasAction reports whether the optional action pair is complete.
func (n Notification) HasAction() bool {
	return n.ActionURL != "" && n.ActionText != ""
}

// User identifies the recipient. FirstName may be empty; templates fall back
// to Username for the greeting.
type User struct {
	Username  string
	FirstName string
	Email     string
}

// DisplayName is the name templates greet the user with.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}
