// Package events defines the event-subscription capability used to route
// per-job download notifications, plus an in-process bus implementation.
//
// Platforms differ in how they deliver native events; all of them are
// adapted to the single Subscriber contract here, and Fanout composes the
// mechanisms a platform actually has (none, one, or several).
package events

// Payload carries the event data for one delivery.
type Payload map[string]interface{}

// Handler consumes one event delivery.
type Handler func(Payload)

// Subscription is a handle to an active registration. Unsubscribe is safe to
// call more than once; only the first call has an effect.
type Subscription interface {
	Unsubscribe()
}

// Subscriber registers handlers on named channels.
type Subscriber interface {
	Subscribe(channel string, fn Handler) Subscription
}

// Publisher emits events on named channels.
type Publisher interface {
	Publish(channel string, payload Payload)
}

type nopSubscription struct{}

func (nopSubscription) Unsubscribe() {}

// NopSubscription returns a subscription that does nothing. Used where a
// registration legitimately has no backing mechanism.
func NopSubscription() Subscription {
	return nopSubscription{}
}
