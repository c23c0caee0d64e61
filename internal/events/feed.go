// Package events carries cart change notifications between sessions and
// devices. Notifications have no payload; subscribers always re-fetch the
// authoritative cart.
package events

import (
	"context"
	"sync"
)

// Feed publishes and subscribes to per-user cart change notifications.
type Feed interface {
	Publish(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, userID string) (*Subscription, error)
}

// Subscription is a live change feed for one user.
type Subscription struct {
	ch      chan struct{}
	done    chan struct{}
	once    sync.Once
	closeFn func()
}

func newSubscription(closeFn func()) *Subscription {
	return &Subscription{
		ch:      make(chan struct{}, 1),
		done:    make(chan struct{}),
		closeFn: closeFn,
	}
}

// Changes delivers one value per notification. Delivery is coalescing: a
// notification arriving while one is already pending is dropped, which is
// safe because every notification triggers a full reload.
func (s *Subscription) Changes() <-chan struct{} {
	return s.ch
}

// Done is closed when the subscription has been torn down.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) notify() {
	select {
	case <-s.done:
	case s.ch <- struct{}{}:
	default:
	}
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		if s.closeFn != nil {
			s.closeFn()
		}
	})
	return nil
}
