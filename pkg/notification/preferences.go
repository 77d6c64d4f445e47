package notification

// Preferences captures a recipient's delivery choices: the channel switches
// plus one toggle per notification type. Use DefaultPreferences for the
// everything-on starting point; a zero Preferences value blocks every
// delivery, which is the safe reading of "never asked".
type Preferences struct {
	ReceiveEmail bool
	ReceivePush  bool

	Matches      bool
	Messages     bool
	Likes        bool
	Events       bool
	Subscription bool
	System       bool
}

// DefaultPreferences opts the recipient into every channel and type.
func DefaultPreferences() Preferences {
	return Preferences{
		ReceiveEmail: true,
		ReceivePush:  true,
		Matches:      true,
		Messages:     true,
		Likes:        true,
		Events:       true,
		Subscription: true,
		System:       true,
	}
}

// Allows reports whether the recipient wants this notification type at all,
// regardless of channel.
func (p Preferences) Allows(t Type) bool {
	switch t {
	case TypeMatch:
		return p.Matches
	case TypeMessage:
		return p.Messages
	case TypeLike:
		return p.Likes
	case TypeEvent:
		return p.Events
	case TypeSubscription:
		return p.Subscription
	case TypeSystem:
		return p.System
	}
	return false
}

// AllowsEmail reports whether an email for this type should go out.
func (p Preferences) AllowsEmail(t Type) bool {
	return p.ReceiveEmail && p.Allows(t)
}

// AllowsPush reports whether a push notification for this type should go
// out.
func (p Preferences) AllowsPush(t Type) bool {
	return p.ReceivePush && p.Allows(t)
}
