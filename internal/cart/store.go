package cart

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
	"github.com/Emmakaranja1/symatech-storefront/internal/session"
)

// Syncer propagates local cart mutations to the server-held cart. The gateway
// client satisfies this.
type Syncer interface {
	FetchCart(ctx context.Context, userID int64) ([]domain.CartLine, error)
	AddCartItem(ctx context.Context, userID, productID int64, quantity int32) error
	SetCartQuantity(ctx context.Context, userID, productID int64, quantity int32) error
	RemoveCartItem(ctx context.Context, userID, productID int64) error
	ClearCart(ctx context.Context, userID int64) error
}

// Store holds the local carts, keyed by session owner. Local state is the
// source of truth for rendering: every mutation applies synchronously and
// returns the updated cart, while remote reconciliation runs detached and its
// failure is swallowed. A cart stays editable even with the backend down.
type Store struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartLine

	syncer      Syncer
	syncTimeout time.Duration
	restoring   singleflight.Group
	log         zerolog.Logger

	// pending tracks detached reconciliation calls so Wait can drain them.
	pending sync.WaitGroup
}

func NewStore(syncer Syncer, log zerolog.Logger) *Store {
	return &Store{
		carts:       make(map[string][]domain.CartLine),
		syncer:      syncer,
		syncTimeout: 10 * time.Second,
		log:         log,
	}
}

// Snapshot returns a copy of the owner's cart; later store mutations never
// alter it, which is what isolates an in-flight checkout.
func (s *Store) Snapshot(sess session.Session) domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]domain.CartLine, len(s.carts[sess.Owner]))
	copy(lines, s.carts[sess.Owner])
	return domain.Cart{Owner: sess.Owner, Lines: lines}
}

// AddItem merges into an existing line by summing quantities or appends a new
// line preserving insertion order. quantity must be positive.
func (s *Store) AddItem(ctx context.Context, sess session.Session, product domain.Product, quantity int32) domain.Cart {
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	lines := s.carts[sess.Owner]
	merged := false
	for i := range lines {
		if lines[i].Product.ID == product.ID {
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, domain.CartLine{Product: product, Quantity: quantity, AddedAt: time.Now()})
	}
	s.carts[sess.Owner] = lines
	s.mu.Unlock()

	s.reconcile(sess, "add", func(ctx context.Context, userID int64) error {
		return s.syncer.AddCartItem(ctx, userID, product.ID, quantity)
	})
	return s.Snapshot(sess)
}

// UpdateQuantity replaces the line's quantity; a quantity of zero or less is
// equivalent to RemoveItem.
func (s *Store) UpdateQuantity(ctx context.Context, sess session.Session, productID int64, quantity int32) domain.Cart {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sess, productID)
	}

	s.mu.Lock()
	found := false
	lines := s.carts[sess.Owner]
	for i := range lines {
		if lines[i].Product.ID == productID {
			lines[i].Quantity = quantity
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.reconcile(sess, "set_quantity", func(ctx context.Context, userID int64) error {
			return s.syncer.SetCartQuantity(ctx, userID, productID, quantity)
		})
	}
	return s.Snapshot(sess)
}

// RemoveItem deletes the line if present; removing an absent line is a no-op,
// not an error.
func (s *Store) RemoveItem(ctx context.Context, sess session.Session, productID int64) domain.Cart {
	s.mu.Lock()
	lines := s.carts[sess.Owner]
	found := false
	for i := range lines {
		if lines[i].Product.ID == productID {
			s.carts[sess.Owner] = append(lines[:i], lines[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.reconcile(sess, "remove", func(ctx context.Context, userID int64) error {
			return s.syncer.RemoveCartItem(ctx, userID, productID)
		})
	}
	return s.Snapshot(sess)
}

// Clear empties all lines. The checkout orchestrator calls this exactly once
// per completed checkout, never before order confirmation.
func (s *Store) Clear(ctx context.Context, sess session.Session) domain.Cart {
	s.mu.Lock()
	delete(s.carts, sess.Owner)
	s.mu.Unlock()

	s.reconcile(sess, "clear", func(ctx context.Context, userID int64) error {
		return s.syncer.ClearCart(ctx, userID)
	})
	return domain.Cart{Owner: sess.Owner}
}

// RestoreFromRemote replaces local state with the server-held cart. This is
// the one operation where remote wins, because it runs at session
// establishment before any local mutation. A failed fetch leaves local state
// untouched and is not fatal.
func (s *Store) RestoreFromRemote(ctx context.Context, sess session.Session) error {
	if !sess.Authenticated() || s.syncer == nil {
		return nil
	}
	_, err, _ := s.restoring.Do(sess.Owner, func() (any, error) {
		lines, err := s.syncer.FetchCart(ctx, sess.Identity.ID)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.carts[sess.Owner] = lines
		s.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("owner", sess.Owner).Msg("remote cart restore failed, keeping local state")
		return err
	}
	return nil
}

// reconcile fires a best-effort remote call when a session exists: no retries,
// no backoff, failure logged and discarded. A missed sync is corrected by the
// next restore or the next mutation of the same line.
func (s *Store) reconcile(sess session.Session, op string, call func(ctx context.Context, userID int64) error) {
	if s.syncer == nil || !sess.Authenticated() {
		return
	}
	userID := sess.Identity.ID

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		// Detached from the request: the caller has already returned.
		ctx, cancel := context.WithTimeout(session.WithSession(context.Background(), sess), s.syncTimeout)
		defer cancel()
		if err := call(ctx, userID); err != nil {
			s.log.Warn().Err(err).Str("op", op).Str("owner", sess.Owner).Msg("cart reconciliation failed")
		}
	}()
}

// Wait blocks until all in-flight reconciliation calls finish. Used on
// shutdown and in tests.
func (s *Store) Wait() {
	s.pending.Wait()
}
