// Package cart holds the session cart engine: an in-memory store that is
// the source of truth for the active session, persisted asynchronously to
// guest storage or the remote cart store, and a synchronizer that moves the
// cart across identity transitions.
package cart

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

// RemoteStore is the authenticated backing store, keyed by user id.
type RemoteStore interface {
	Get(ctx context.Context, userID string) ([]domain.LineItem, error)
	Put(ctx context.Context, userID string, items []domain.LineItem) error
	Delete(ctx context.Context, userID string) error
}

// GuestStore is the anonymous backing store, keyed by session id.
type GuestStore interface {
	Load(ctx context.Context, sessionID string) ([]domain.LineItem, error)
	Save(ctx context.Context, sessionID string, items []domain.LineItem) error
	Clear(ctx context.Context, sessionID string) error
}

const persistTimeout = 5 * time.Second

// Store owns the in-memory cart for one session. Mutations are applied in
// call order and never blocked by persistence; every mutation hands the
// full current snapshot to a background write against whichever backing
// store the bound identity selects. Persistence failures are logged, not
// rolled back.
type Store struct {
	remote    RemoteStore
	guest     GuestStore
	sessionID string
	logger    *log.Logger

	mu     sync.Mutex
	items  []domain.LineItem
	userID string // empty while anonymous

	initInFlight atomic.Bool
	persists     sync.WaitGroup
}

func NewStore(remote RemoteStore, guest GuestStore, sessionID string, logger *log.Logger) *Store {
	return &Store{
		remote:    remote,
		guest:     guest,
		sessionID: sessionID,
		logger:    logger,
	}
}

// AddItem appends a line item, or increments the quantity of an existing
// line with the same (product, variant) key.
func (s *Store) AddItem(item domain.LineItem) {
	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].Key() == item.Key() {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	snapshot, userID := s.snapshotLocked()
	s.mu.Unlock()

	s.schedulePersist(snapshot, userID)
}

// UpdateQuantity sets the line's quantity exactly. A quantity of zero or
// less removes the line.
func (s *Store) UpdateQuantity(key domain.LineKey, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(key)
		return
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity = quantity
			break
		}
	}
	snapshot, userID := s.snapshotLocked()
	s.mu.Unlock()

	s.schedulePersist(snapshot, userID)
}

// RemoveItem drops the line with the given key, if present.
func (s *Store) RemoveItem(key domain.LineKey) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	snapshot, userID := s.snapshotLocked()
	s.mu.Unlock()

	s.schedulePersist(snapshot, userID)
}

// Clear empties the cart and removes it from the backing store.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	snapshot, userID := s.snapshotLocked()
	s.mu.Unlock()

	s.schedulePersist(snapshot, userID)
}

// Initialize loads the cart from the backing store selected by userID (the
// remote store when non-empty, guest storage otherwise) and replaces the
// in-memory state wholesale. It is idempotent, and mutually exclusive: a
// call arriving while another is in flight is dropped.
func (s *Store) Initialize(ctx context.Context, userID string) error {
	if !s.initInFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer s.initInFlight.Store(false)

	var (
		items []domain.LineItem
		err   error
	)
	if userID != "" {
		items, err = s.remote.Get(ctx, userID)
	} else {
		items, err = s.guest.Load(ctx, s.sessionID)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.userID = userID
	s.mu.Unlock()
	return nil
}

// Items returns a copy of the current line items.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Subtotal sums quantity times unit price over the current lines.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Subtotal(s.items)
}

// Count returns the total item quantity across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, li := range s.items {
		n += li.Quantity
	}
	return n
}

// UserID returns the bound user id, empty while anonymous.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Flush blocks until all scheduled persistence writes have completed.
func (s *Store) Flush() {
	s.persists.Wait()
}

// reset drops the in-memory cart and identity binding without touching any
// backing store. Used on logout, where guest storage must survive.
func (s *Store) reset() {
	s.mu.Lock()
	s.items = nil
	s.userID = ""
	s.mu.Unlock()
}

func (s *Store) snapshotLocked() ([]domain.LineItem, string) {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out, s.userID
}

func (s *Store) schedulePersist(snapshot []domain.LineItem, userID string) {
	s.persists.Add(1)
	go func() {
		defer s.persists.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		var err error
		switch {
		case userID != "" && len(snapshot) == 0:
			err = s.remote.Delete(ctx, userID)
		case userID != "":
			err = s.remote.Put(ctx, userID, snapshot)
		case len(snapshot) == 0:
			err = s.guest.Clear(ctx, s.sessionID)
		default:
			err = s.guest.Save(ctx, s.sessionID, snapshot)
		}
		if err != nil {
			s.logger.Printf("persist cart (user=%q session=%s): %v", userID, s.sessionID, err)
		}
	}()
}
