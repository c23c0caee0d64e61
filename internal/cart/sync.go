package cart

import (
	"context"
	"log"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
)

// Feed is the remote change-notification source consumed by the
// synchronizer.
type Feed interface {
	Subscribe(ctx context.Context, userID string) (*events.Subscription, error)
}

const (
	migrationAttempts  = 3
	migrationBaseDelay = 500 * time.Millisecond
)

// Synchronizer moves the session cart across identity transitions: loading
// guest state on startup, migrating the guest cart into the remote store on
// the first login of the process lifetime, reloading on remote change
// notifications, and resetting to guest state on logout.
//
// It owns the at-most-one change subscription: a background goroutine holds
// the handle and forwards notifications; establishing a new subscription
// always tears down the previous one first.
type Synchronizer struct {
	store  *Store
	remote RemoteStore
	guest  GuestStore
	feed   Feed
	logger *log.Logger

	baseDelay time.Duration

	mu       sync.Mutex
	userID   string // empty while anonymous
	migrated bool   // one login migration attempt per process lifetime
	sub      *events.Subscription
	closed   bool
}

func NewSynchronizer(store *Store, remote RemoteStore, guest GuestStore, feed Feed, logger *log.Logger) *Synchronizer {
	return &Synchronizer{
		store:     store,
		remote:    remote,
		guest:     guest,
		feed:      feed,
		logger:    logger,
		baseDelay: migrationBaseDelay,
	}
}

// Resolve handles the startup transition once identity is known: an empty
// userID loads the guest cart, a non-empty one behaves as a login.
func (y *Synchronizer) Resolve(ctx context.Context, userID string) error {
	if userID == "" {
		return y.store.Initialize(ctx, "")
	}
	return y.SignIn(ctx, userID)
}

// SignIn reacts to a login or an identity swap. The first anonymous-to-
// authenticated transition of the process lifetime migrates the guest cart
// into the remote store; an identity swap only moves the subscription and
// reloads.
func (y *Synchronizer) SignIn(ctx context.Context, userID string) error {
	y.mu.Lock()
	if y.closed || y.userID == userID {
		y.mu.Unlock()
		return nil
	}

	swap := y.userID != ""
	migrate := !swap && !y.migrated
	if migrate {
		y.migrated = true
	}
	y.teardownLocked()
	y.userID = userID
	y.mu.Unlock()

	if migrate {
		y.migrateGuest(ctx, userID)
	}
	y.subscribe(userID)
	return y.store.Initialize(ctx, userID)
}

// SignOut clears the in-memory cart, re-arms the migration guard, tears
// down the change subscription, and reloads guest state.
func (y *Synchronizer) SignOut(ctx context.Context) error {
	y.mu.Lock()
	if y.userID == "" {
		y.mu.Unlock()
		return nil
	}
	y.teardownLocked()
	y.userID = ""
	y.migrated = false
	y.mu.Unlock()

	y.store.reset()
	return y.store.Initialize(ctx, "")
}

// Close tears down the subscription and stops the synchronizer.
func (y *Synchronizer) Close() {
	y.mu.Lock()
	y.closed = true
	y.teardownLocked()
	y.mu.Unlock()
}

// migrateGuest pushes the guest cart into the remote store, merging by line
// key into whatever the remote already holds. Retried with exponential
// backoff; guest storage is cleared unconditionally after the attempt, and
// failure is logged rather than surfaced — the in-memory cart keeps
// working either way.
func (y *Synchronizer) migrateGuest(ctx context.Context, userID string) {
	guestItems, err := y.guest.Load(ctx, y.store.sessionID)
	if err != nil {
		y.logger.Printf("load guest cart for migration: %v", err)
		return
	}
	if len(guestItems) == 0 {
		return
	}

	var lastErr error
	delay := y.baseDelay
	for attempt := 1; attempt <= migrationAttempts; attempt++ {
		if lastErr = y.pushGuest(ctx, userID, guestItems); lastErr == nil {
			break
		}
		if attempt < migrationAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = migrationAttempts
			}
			delay *= 2
		}
	}

	if err := y.guest.Clear(ctx, y.store.sessionID); err != nil {
		y.logger.Printf("clear guest cart after migration: %v", err)
	}
	if lastErr != nil {
		y.logger.Printf("migrate guest cart to user %s: %v", userID, lastErr)
	}
}

func (y *Synchronizer) pushGuest(ctx context.Context, userID string, guestItems []domain.LineItem) error {
	remoteItems, err := y.remote.Get(ctx, userID)
	if err != nil {
		return err
	}

	merged := make([]domain.LineItem, len(remoteItems))
	copy(merged, remoteItems)
	for _, item := range guestItems {
		found := false
		for i := range merged {
			if merged[i].Key() == item.Key() {
				merged[i].Quantity += item.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, item)
		}
	}
	return y.remote.Put(ctx, userID, merged)
}

// subscribe establishes the change subscription for userID and starts the
// goroutine that owns it. Each notification triggers a full reload of the
// authoritative cart; stale or reordered notifications are self-correcting
// because every reload fetches current truth.
func (y *Synchronizer) subscribe(userID string) {
	sub, err := y.feed.Subscribe(context.Background(), userID)
	if err != nil {
		y.logger.Printf("subscribe to cart changes for %s: %v", userID, err)
		return
	}

	y.mu.Lock()
	// The identity may have moved on while Subscribe was in flight. Keeping
	// the handle would leave a live subscription for the wrong user.
	if y.closed || y.userID != userID {
		y.mu.Unlock()
		sub.Close()
		return
	}
	y.teardownLocked()
	y.sub = sub
	y.mu.Unlock()

	go func() {
		for {
			select {
			case <-sub.Done():
				return
			case <-sub.Changes():
				// A notification that raced an identity transition must
				// not reload the old user's cart.
				y.mu.Lock()
				current := y.userID
				y.mu.Unlock()
				if current != userID {
					sub.Close()
					return
				}
				if err := y.store.Initialize(context.Background(), userID); err != nil {
					y.logger.Printf("reload cart for %s: %v", userID, err)
				}
			}
		}
	}()
}

func (y *Synchronizer) teardownLocked() {
	if y.sub == nil {
		return
	}
	y.sub.Close()
	y.sub = nil
}
