package events

import (
	"context"
	"sync"
)

type memoryFeed struct {
	mu   sync.Mutex
	subs map[string][]*Subscription
}

// NewMemory returns an in-process Feed. Used when no broker is configured,
// and by tests. Notifications only reach subscribers in the same process.
func NewMemory() Feed {
	return &memoryFeed{subs: make(map[string][]*Subscription)}
}

func (f *memoryFeed) Publish(_ context.Context, userID string) error {
	f.mu.Lock()
	subs := make([]*Subscription, len(f.subs[userID]))
	copy(subs, f.subs[userID])
	f.mu.Unlock()

	for _, s := range subs {
		s.notify()
	}
	return nil
}

func (f *memoryFeed) Subscribe(_ context.Context, userID string) (*Subscription, error) {
	var sub *Subscription
	sub = newSubscription(func() {
		f.remove(userID, sub)
	})

	f.mu.Lock()
	f.subs[userID] = append(f.subs[userID], sub)
	f.mu.Unlock()
	return sub, nil
}

func (f *memoryFeed) remove(userID string, sub *Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := f.subs[userID]
	for i, s := range subs {
		if s == sub {
			f.subs[userID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(f.subs[userID]) == 0 {
		delete(f.subs, userID)
	}
}
