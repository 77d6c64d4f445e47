package preview

import (
	"context"
	"testing"

	"github.com/goliatone/go-mailgen/pkg/notification"
)

// scriptedDriver replays canned answers so session logic is testable without
// a terminal.
type scriptedDriver struct {
	inputs   []string
	confirms []bool
	selects  []int
}

func (d *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return cfg.Default, nil
	}
	out := d.inputs[0]
	d.inputs = d.inputs[1:]
	return out, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return cfg.Default, nil
	}
	out := d.confirms[0]
	d.confirms = d.confirms[1:]
	return out, nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return cfg.DefaultIndex, nil
	}
	out := d.selects[0]
	d.selects = d.selects[1:]
	return out, nil
}

func TestSessionRun_DefaultsProduceRenderableInput(t *testing.T) {
	session := NewSession(&scriptedDriver{})

	in, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if in.Site.Name != "Findam" || in.Site.URL != "https://findam.test" {
		t.Fatalf("unexpected site defaults: %+v", in.Site)
	}
	if in.User.Username != "bob" || in.User.FirstName != "" {
		t.Fatalf("unexpected user defaults: %+v", in.User)
	}
	if err := in.Notification.Validate(); err != nil {
		t.Fatalf("collected notification does not validate: %v", err)
	}
	if in.Notification.HasAction() {
		t.Fatal("action defaults to off")
	}
}

func TestSessionRun_CollectsActionPair(t *testing.T) {
	session := NewSession(&scriptedDriver{
		selects:  []int{1},
		confirms: []bool{true},
	})

	in, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if in.Notification.Type != notification.TypeMessage {
		t.Fatalf("unexpected type %s", in.Notification.Type)
	}
	if !in.Notification.HasAction() {
		t.Fatalf("expected a complete action pair: %+v", in.Notification)
	}
}
