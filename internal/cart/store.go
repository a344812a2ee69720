// Package cart owns the shopping cart: the in-memory line sequence, its
// mutations, and its write-through persistence to a key/value store.
package cart

import (
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"storefront/client/internal/domain"
	"storefront/client/internal/storage"
)

// DefaultStorageKey is the key the cart snapshot lives under
const DefaultStorageKey = "@storefront:cart"

type State int

const (
	StateRestoring State = iota // Persisted cart not loaded yet
	StateReady
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Store is the single source of truth for cart contents.
//
// Mutations issued while the store is still restoring are applied and
// persisted right away. When the restore then completes, the loaded cart is
// discarded in favor of the mutated one.
type Store struct {
	kv  storage.KeyValueStore
	key string

	mu                    sync.RWMutex
	lines                 []domain.CartLine
	state                 State
	mutatedWhileRestoring bool
	version               uint64

	// Serializes writes; savedVersion is the newest snapshot known to be durable
	saveMu       sync.Mutex
	savedVersion uint64
}

func NewStore(kv storage.KeyValueStore, key string) *Store {
	if key == "" {
		key = DefaultStorageKey
	}
	return &Store{
		kv:    kv,
		key:   key,
		lines: []domain.CartLine{},
		state: StateRestoring,
	}
}

// Initialize restores the persisted cart and moves the store to StateReady.
// Read or decode failures are logged and treated as an empty cart.
// Only the first call has an effect.
func (s *Store) Initialize(ctx context.Context) {
	if s.State() == StateReady {
		return
	}

	restored := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReady {
		return
	}
	s.state = StateReady

	if s.mutatedWhileRestoring {
		if len(restored) > 0 {
			log.Warnf("⚠️ Cart changed while restoring, discarding %d restored lines", len(restored))
		}
		return
	}

	s.lines = restored
	log.Infof("🛒 Cart restored with %d lines", len(restored))
}

func (s *Store) load(ctx context.Context) []domain.CartLine {
	payload, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		log.Errorf("❌ Failed to load cart from storage: %v", err)
		return []domain.CartLine{}
	}
	if !found {
		log.Debugf("No saved cart under %s", s.key)
		return []domain.CartLine{}
	}

	lines, err := Decode(payload)
	if err != nil {
		log.Errorf("❌ Failed to decode saved cart: %v", err)
		return []domain.CartLine{}
	}
	return lines
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// AddToCart merges quantity into the existing line for product, or appends a new line
func (s *Store) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	if quantity < 1 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if err := product.Validate(); err != nil {
		return err
	}

	s.mutate(ctx, func(lines []domain.CartLine) []domain.CartLine {
		next := slices.Clone(lines)
		if i := indexOf(next, product.ID); i >= 0 {
			next[i].Quantity += quantity
			return next
		}
		return append(next, domain.CartLine{Product: product, Quantity: quantity})
	})
	return nil
}

// RemoveFromCart drops the line for productID; absent ids are ignored
func (s *Store) RemoveFromCart(ctx context.Context, productID int64) {
	s.mutate(ctx, func(lines []domain.CartLine) []domain.CartLine {
		return slices.DeleteFunc(slices.Clone(lines), func(l domain.CartLine) bool {
			return l.ID == productID
		})
	})
}

// UpdateQuantity sets the line's quantity in place. A quantity <= 0 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID)
		return
	}

	s.mutate(ctx, func(lines []domain.CartLine) []domain.CartLine {
		next := slices.Clone(lines)
		if i := indexOf(next, productID); i >= 0 {
			next[i].Quantity = quantity
		}
		return next
	})
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, func([]domain.CartLine) []domain.CartLine {
		return []domain.CartLine{}
	})
}

// mutate swaps in the slice returned by fn and writes the resulting snapshot.
// fn must not modify its argument.
func (s *Store) mutate(ctx context.Context, fn func([]domain.CartLine) []domain.CartLine) {
	s.mu.Lock()
	s.lines = fn(s.lines)
	if s.state == StateRestoring {
		s.mutatedWhileRestoring = true
	}
	s.version++
	version, lines := s.version, s.lines
	s.mu.Unlock()

	s.persist(ctx, version, lines)
}

func (s *Store) persist(ctx context.Context, version uint64, lines []domain.CartLine) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if version <= s.savedVersion {
		return // A newer snapshot is already durable
	}

	payload, err := Encode(lines)
	if err != nil {
		log.Errorf("❌ Failed to encode cart: %v", err)
		return
	}

	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		log.Errorf("❌ Failed to save cart to storage: %v", err)
		return
	}

	s.savedVersion = version
	log.Debugf("Saved cart snapshot v%d with %d lines", version, len(lines))
}

// Flush writes the current cart if the latest snapshot never made it to storage
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	version, lines := s.version, s.lines
	s.mu.RUnlock()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if version <= s.savedVersion {
		return nil
	}

	payload, err := Encode(lines)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		return err
	}
	s.savedVersion = version
	return nil
}

// Lines returns a copy of the cart in insertion order
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lines)
}

func (s *Store) Line(productID int64) (domain.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.lines, productID); i >= 0 {
		return s.lines[i], true
	}
	return domain.CartLine{}, false
}

// Total is the sum of price*quantity over all lines
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities, not the number of lines
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

func (s *Store) LineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

func (s *Store) IsEmpty() bool {
	return s.LineCount() == 0
}

func indexOf(lines []domain.CartLine, productID int64) int {
	return slices.IndexFunc(lines, func(l domain.CartLine) bool {
		return l.ID == productID
	})
}
