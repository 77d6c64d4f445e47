package preview

import (
	"context"

	"github.com/goliatone/go-mailgen/pkg/notification"
)

// Input is everything a compose call needs, gathered from the prompts.
type Input struct {
	Site         notification.Site
	Notification notification.Notification
	User         notification.User
}

// Session drives the prompt sequence. Construct with NewSession.
type Session struct {
	driver PromptDriver
}

// NewSession builds a session over the given driver, defaulting to the
// survey-backed terminal driver.
func NewSession(driver PromptDriver) *Session {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	return &Session{driver: driver}
}

var typeOptions = []notification.Type{
	notification.TypeMatch,
	notification.TypeMessage,
	notification.TypeLike,
	notification.TypeEvent,
	notification.TypeSubscription,
	notification.TypeSystem,
}

// Run walks through the prompts and returns the collected input. Field
// defaults mirror the sample data used across the examples so pressing
// enter all the way through yields a renderable preview.
func (s *Session) Run(ctx context.Context) (Input, error) {
	var in Input

	siteName, err := s.driver.Input(ctx, InputConfig{Message: "Site name", Default: "Findam"})
	if err != nil {
		return Input{}, err
	}
	siteURL, err := s.driver.Input(ctx, InputConfig{Message: "Site URL", Default: "https://findam.test"})
	if err != nil {
		return Input{}, err
	}
	in.Site = notification.Site{Name: siteName, URL: siteURL}

	username, err := s.driver.Input(ctx, InputConfig{Message: "Recipient username", Default: "bob"})
	if err != nil {
		return Input{}, err
	}
	firstName, err := s.driver.Input(ctx, InputConfig{
		Message: "Recipient first name",
		Help:    "Leave empty to exercise the username fallback in the greeting.",
	})
	if err != nil {
		return Input{}, err
	}
	email, err := s.driver.Input(ctx, InputConfig{Message: "Recipient email", Default: "bob@findam.test"})
	if err != nil {
		return Input{}, err
	}
	in.User = notification.User{Username: username, FirstName: firstName, Email: email}

	options := make([]string, len(typeOptions))
	for i, typ := range typeOptions {
		options[i] = string(typ)
	}
	typeIdx, err := s.driver.Select(ctx, SelectConfig{Message: "Notification type", Options: options})
	if err != nil {
		return Input{}, err
	}

	title, err := s.driver.Input(ctx, InputConfig{Message: "Title", Default: "Nouveau match"})
	if err != nil {
		return Input{}, err
	}
	message, err := s.driver.Input(ctx, InputConfig{Message: "Message", Default: "Vous avez un nouveau match !"})
	if err != nil {
		return Input{}, err
	}

	in.Notification = notification.Notification{
		Type:        typeOptions[typeIdx],
		ContextType: notification.ContextSystem,
		Title:       title,
		Message:     message,
	}

	withAction, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Include an action link?", Default: false})
	if err != nil {
		return Input{}, err
	}
	if withAction {
		actionText, err := s.driver.Input(ctx, InputConfig{Message: "Action text", Default: "Voir le match"})
		if err != nil {
			return Input{}, err
		}
		actionURL, err := s.driver.Input(ctx, InputConfig{Message: "Action URL path", Default: "/matches/42/"})
		if err != nil {
			return Input{}, err
		}
		in.Notification.ActionText = actionText
		in.Notification.ActionURL = actionURL
	}

	return in, nil
}
