// FilePath: internal/feed/feed.go

// Package feed fans newly persisted readings out to live dashboard
// subscribers. Delivery is best-effort and asynchronous relative to
// the ingest response; there is no replay for late subscribers.
package feed

import (
	"sync"
	"sync/atomic"

	"github.com/agrisense/farmhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Handler receives each published reading that matches the
// subscription's owner filter.
type Handler func(reading models.Reading)

// Publisher is the write-path view of the feed
type Publisher interface {
	Publish(reading models.Reading)
}

// Subscription is a registered subscriber handle
type Subscription struct {
	id      string
	userID  string
	handler Handler
	closed  atomic.Bool
}

// Feed is a process-scoped registry of subscriber callbacks
type Feed struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

func New() *Feed {
	return &Feed{
		subs: make(map[string]*Subscription),
	}
}

// Subscribe registers a handler. An empty userID receives readings for
// all owners. Safe to call concurrently with publishes and from inside
// a delivery handler.
func (f *Feed) Subscribe(userID string, handler Handler) *Subscription {
	sub := &Subscription{
		id:      nuts.NID("sub", 12),
		userID:  userID,
		handler: handler,
	}

	f.mu.Lock()
	f.subs[sub.id] = sub
	f.mu.Unlock()

	return sub
}

// Unsubscribe removes a subscription. Idempotent; a second call is a
// no-op.
func (f *Feed) Unsubscribe(sub *Subscription) {
	if sub == nil || !sub.closed.CompareAndSwap(false, true) {
		return
	}

	f.mu.Lock()
	delete(f.subs, sub.id)
	f.mu.Unlock()
}

// Publish delivers the reading to every subscription registered at
// call time whose owner filter matches. The subscriber snapshot is
// taken synchronously, delivery happens on a separate goroutine so the
// caller never waits on slow handlers.
func (f *Feed) Publish(reading models.Reading) {
	f.mu.RLock()
	matched := make([]*Subscription, 0, len(f.subs))
	for _, sub := range f.subs {
		if sub.userID == "" || sub.userID == reading.UserID {
			matched = append(matched, sub)
		}
	}
	f.mu.RUnlock()

	if len(matched) == 0 {
		return
	}

	go func() {
		for _, sub := range matched {
			if sub.closed.Load() {
				continue
			}
			deliver(sub, reading)
		}
	}()
}

// deliver shields the fanout loop from a panicking handler
func deliver(sub *Subscription, reading models.Reading) {
	defer func() {
		if rec := recover(); rec != nil {
			nuts.L.Errorf("[Feed] Subscriber %s panicked: %v", sub.id, rec)
		}
	}()
	sub.handler(reading)
}

// SubscriberCount reports the current registry size
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
