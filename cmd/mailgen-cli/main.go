package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-mailgen/pkg/compose"
	"github.com/goliatone/go-mailgen/pkg/notification"
	"github.com/goliatone/go-mailgen/pkg/preview"
)

type contextFile struct {
	Site struct {
		Name string `yaml:"name" json:"name"`
		URL  string `yaml:"url" json:"url"`
		From string `yaml:"from" json:"from"`
	} `yaml:"site" json:"site"`
	Notification struct {
		Type        string `yaml:"type" json:"type"`
		ContextType string `yaml:"context_type" json:"context_type"`
		ContextID   int64  `yaml:"context_id" json:"context_id"`
		Title       string `yaml:"title" json:"title"`
		Message     string `yaml:"message" json:"message"`
		ImageURL    string `yaml:"image_url" json:"image_url"`
		ActionURL   string `yaml:"action_url" json:"action_url"`
		ActionText  string `yaml:"action_text" json:"action_text"`
	} `yaml:"notification" json:"notification"`
	User struct {
		Username  string `yaml:"username" json:"username"`
		FirstName string `yaml:"first_name" json:"first_name"`
		Email     string `yaml:"email" json:"email"`
	} `yaml:"user" json:"user"`
}

func main() {
	contextPath := flag.String("context", "", "YAML/JSON file with site, notification, and user data")
	format := flag.String("format", "text", "output body: text or html")
	output := flag.String("output", "", "output file (stdout if empty)")
	templatesDir := flag.String("templates", "", "directory with custom templates (embedded if empty)")
	interactive := flag.Bool("interactive", false, "collect the context through prompts instead of a file")
	flag.Parse()

	if *format != "text" && *format != "html" {
		log.Fatalf("unknown format %q (want text or html)", *format)
	}

	ctx := context.Background()

	var site notification.Site
	var n notification.Notification
	var u notification.User

	switch {
	case *interactive:
		in, err := preview.NewSession(nil).Run(ctx)
		if err != nil {
			log.Fatalf("Prompt session failed: %v", err)
		}
		site, n, u = in.Site, in.Notification, in.User
	case *contextPath != "":
		loaded, err := loadContextFile(*contextPath)
		if err != nil {
			log.Fatalf("Failed to load context: %v", err)
		}
		site, n, u = loaded.toDomain()
	default:
		log.Fatal("either -context or -interactive is required")
	}

	options := []compose.Option{compose.WithSite(site)}
	if *templatesDir != "" {
		options = append(options, compose.WithTemplates(os.DirFS(*templatesDir)))
	}

	composer, err := compose.New(options...)
	if err != nil {
		log.Fatalf("Failed to build composer: %v", err)
	}

	email, err := composer.Compose(ctx, n, u)
	if err != nil {
		log.Fatalf("Failed to compose email: %v", err)
	}

	body := email.Text
	if *format == "html" {
		body = email.HTML
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(body), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Rendered %s body written to %s\n", *format, *output)
		return
	}
	fmt.Println(body)
}

func loadContextFile(path string) (*contextFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// yaml.v3 parses JSON documents too, so one decoder covers both.
	var loaded contextFile
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &loaded, nil
}

func (f *contextFile) toDomain() (notification.Site, notification.Notification, notification.User) {
	site := notification.Site{
		Name:        f.Site.Name,
		URL:         f.Site.URL,
		FromAddress: f.Site.From,
	}
	n := notification.Notification{
		Type:        notification.Type(f.Notification.Type),
		ContextType: notification.ContextType(f.Notification.ContextType),
		ContextID:   f.Notification.ContextID,
		Title:       f.Notification.Title,
		Message:     f.Notification.Message,
		ImageURL:    f.Notification.ImageURL,
		ActionURL:   f.Notification.ActionURL,
		ActionText:  f.Notification.ActionText,
	}
	u := notification.User{
		Username:  f.User.Username,
		FirstName: f.User.FirstName,
		Email:     f.User.Email,
	}
	return site, n, u
}
