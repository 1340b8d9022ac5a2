package events

// Fanout composes the event-delivery mechanisms available on the current
// platform. Subscribe registers on every non-nil member; an empty fanout
// registers on none and returns a working no-op handle.
type Fanout []Subscriber

// Subscribe registers the handler on all member mechanisms.
func (f Fanout) Subscribe(channel string, fn Handler) Subscription {
	var subs []Subscription
	for _, member := range f {
		if member == nil {
			continue
		}
		subs = append(subs, member.Subscribe(channel, fn))
	}
	if len(subs) == 0 {
		return NopSubscription()
	}
	return multiSubscription(subs)
}

type multiSubscription []Subscription

func (m multiSubscription) Unsubscribe() {
	for _, sub := range m {
		sub.Unsubscribe()
	}
}
