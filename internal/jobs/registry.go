// Package jobs tracks asynchronous download jobs: id allocation and per-job
// event subscriptions.
package jobs

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/getsiphon/siphonfs/internal/events"
	"github.com/getsiphon/siphonfs/internal/logging"
)

// Kind names a per-job event channel family.
type Kind string

const (
	KindBegin    Kind = "DownloadBegin"
	KindProgress Kind = "DownloadProgress"
)

// Channel returns the event channel name for one job, "<kind>-<id>".
func Channel(kind Kind, id int64) string {
	return fmt.Sprintf("%s-%d", kind, id)
}

// Registry allocates job ids and manages per-job event subscriptions.
// Ids are process-wide, strictly increasing, and never reused.
type Registry struct {
	counter atomic.Int64
	events  events.Subscriber
	log     *logging.Logger
}

// NewRegistry creates a registry backed by the given delivery mechanism.
func NewRegistry(subscriber events.Subscriber, log *logging.Logger) *Registry {
	if subscriber == nil {
		subscriber = events.Fanout(nil)
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Registry{events: subscriber, log: log}
}

// Begin allocates the next job id. Safe under concurrent callers; no two
// jobs ever share an id. The first id issued is 1.
func (r *Registry) Begin() int64 {
	return r.counter.Add(1)
}

// Subscribe registers a handler for one event kind of one job and returns
// the handle the owning operation must release on settlement.
func (r *Registry) Subscribe(id int64, kind Kind, fn events.Handler) events.Subscription {
	return r.events.Subscribe(Channel(kind, id), fn)
}

// SubscribeBegin registers a begin handler for the job. When fn is nil a
// default handler is installed that only logs the download-start metadata;
// its registration is not tracked and the returned handle is nil — there is
// nothing for the caller to release.
func (r *Registry) SubscribeBegin(id int64, fn events.Handler) events.Subscription {
	if fn != nil {
		return r.Subscribe(id, KindBegin, fn)
	}

	r.events.Subscribe(Channel(KindBegin, id), func(p events.Payload) {
		r.log.Debug("download started",
			zap.Int64("job_id", id),
			zap.Any("metadata", map[string]interface{}(p)),
		)
	})
	return nil
}

// Release unsubscribes every non-nil handle. Handles guarantee that a second
// release is a no-op, so Release itself may be called defensively.
func (r *Registry) Release(subs ...events.Subscription) {
	for _, sub := range subs {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}
