package compose

import "context"

// Email is a fully rendered message ready for a delivery collaborator. Both
// bodies are always populated; senders that only support one flavour can
// drop the other.
type Email struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender hands a rendered email to the delivery subsystem. Implementations
// own transport, retries, and bounce handling; the composer only guarantees
// the message content.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, email Email) error

// Send calls fn.
func (fn SenderFunc) Send(ctx context.Context, email Email) error {
	return fn(ctx, email)
}

type nopSender struct{}

func (nopSender) Send(context.Context, Email) error { return nil }

// NopSender discards every email. It is the default so Compose-only callers
// never wire a transport by accident.
var NopSender Sender = nopSender{}
