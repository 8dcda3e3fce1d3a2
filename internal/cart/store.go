package cart

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warungku-app/warungku-backend/internal/pricing"
	pkgerrors "github.com/warungku-app/warungku-backend/pkg/errors"
	"github.com/warungku-app/warungku-backend/pkg/logger"
	"github.com/warungku-app/warungku-backend/pkg/metrics"
	"github.com/warungku-app/warungku-backend/pkg/types"
)

// State describes the lifecycle of a user's in-memory cart.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

// quantityFloor is the lowest quantity a line can hold. Decrements that would
// cross it are absorbed; removal is an explicit operation.
const quantityFloor = 1

const (
	opChangeQuantity = "change_quantity"
	opRemoveItem     = "remove_item"
)

// Store holds one user's cart and keeps it consistent with the remote
// gateway. Mutations apply optimistically and roll back when the gateway
// rejects them; a successful Load supersedes any rollback still in flight.
type Store struct {
	userID  uuid.UUID
	gateway Gateway
	log     *logger.Logger
	stats   *metrics.CartMetrics

	mu    sync.Mutex
	state State
	lines []types.CartLine
	gen   uint64

	lockMu    sync.Mutex
	lineLocks map[string]*sync.Mutex
}

// NewStore builds an empty store for the given user.
func NewStore(userID uuid.UUID, gateway Gateway, log *logger.Logger, stats *metrics.CartMetrics) (*Store, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if log == nil {
		log = logger.New(logger.Options{ServiceName: "cart", Output: io.Discard})
	}
	return &Store{
		userID:    userID,
		gateway:   gateway,
		log:       log,
		stats:     stats,
		state:     StateUninitialized,
		lineLocks: make(map[string]*sync.Mutex),
	}, nil
}

// Load replaces the local cart with the gateway's view. While the fetch runs
// the previous lines stay readable. A failed load only marks the store Failed
// when no load has ever succeeded; otherwise the last good state is kept.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	lines, err := s.gateway.FetchLines(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.gen == 0 {
			s.state = StateFailed
		} else {
			s.state = StateReady
		}
		s.log.Error(ctx, "cart load failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeFetchFailed, err, "fetch cart lines")
	}
	s.lines = cloneLines(lines)
	s.gen++
	s.state = StateReady
	return nil
}

// ChangeQuantity applies a signed delta to a line's quantity. A delta that
// would land below the floor clamps to the floor, and a clamp or zero delta
// that leaves the quantity unchanged never reaches the gateway.
func (s *Store) ChangeQuantity(ctx context.Context, productID string, delta int) error {
	lock := s.lineLock(productID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is not ready")
	}
	idx := s.indexOf(productID)
	if idx < 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	current := s.lines[idx].Quantity
	next := current + delta
	if next < quantityFloor {
		next = quantityFloor
	}
	if next == current {
		s.mu.Unlock()
		s.stats.IncNoop(opChangeQuantity)
		return nil
	}
	s.lines[idx].Quantity = next
	prevGen := s.gen
	s.mu.Unlock()

	start := time.Now()
	err := s.gateway.SetQuantity(ctx, s.userID, productID, next)
	s.stats.ObserveDuration(opChangeQuantity, time.Since(start))
	if err != nil {
		s.rollbackQuantity(ctx, productID, current, prevGen)
		return pkgerrors.Wrap(pkgerrors.CodeUpdateFailed, err, "set cart line quantity")
	}
	s.stats.IncApplied(opChangeQuantity)
	return nil
}

// RemoveItem drops a line from the cart. The removed line is re-appended at
// the tail when the gateway rejects the delete, unless a fresh load has
// already replaced the cart.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	lock := s.lineLock(productID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is not ready")
	}
	idx := s.indexOf(productID)
	if idx < 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	removed := s.lines[idx].Clone()
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	prevGen := s.gen
	s.mu.Unlock()

	start := time.Now()
	err := s.gateway.DeleteLine(ctx, s.userID, productID)
	s.stats.ObserveDuration(opRemoveItem, time.Since(start))
	if err != nil {
		s.rollbackRemoval(ctx, removed, prevGen)
		return pkgerrors.Wrap(pkgerrors.CodeRemoveFailed, err, "delete cart line")
	}
	s.stats.IncApplied(opRemoveItem)
	return nil
}

// Subtotal prices the current lines. Invalid promotions are clamped by the
// resolver, so the subtotal never exceeds the undiscounted total.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Subtotal(s.lines)
}

// Snapshot returns the current state and a deep copy of the lines. Callers
// can hold the copy without blocking mutations.
func (s *Store) Snapshot() (State, []types.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, cloneLines(s.lines)
}

// Generation reports how many loads have succeeded.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Store) rollbackQuantity(ctx context.Context, productID string, quantity int, prevGen uint64) {
	s.mu.Lock()
	if s.gen == prevGen {
		if idx := s.indexOf(productID); idx >= 0 {
			s.lines[idx].Quantity = quantity
		}
	}
	s.mu.Unlock()
	s.stats.IncRollback(opChangeQuantity)
	s.log.Warn(ctx, "cart quantity change rolled back")
}

func (s *Store) rollbackRemoval(ctx context.Context, removed types.CartLine, prevGen uint64) {
	s.mu.Lock()
	if s.gen == prevGen && s.indexOf(removed.ProductID) < 0 {
		s.lines = append(s.lines, removed)
	}
	s.mu.Unlock()
	s.stats.IncRollback(opRemoveItem)
	s.log.Warn(ctx, "cart removal rolled back")
}

// lineLock serializes mutations per product so at most one gateway call per
// line is in flight.
func (s *Store) lineLock(productID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if lock, ok := s.lineLocks[productID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.lineLocks[productID] = lock
	return lock
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneLines(lines []types.CartLine) []types.CartLine {
	if len(lines) == 0 {
		return nil
	}
	out := make([]types.CartLine, len(lines))
	for i := range lines {
		out[i] = lines[i].Clone()
	}
	return out
}
