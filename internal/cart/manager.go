package cart

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warungku-app/warungku-backend/pkg/logger"
	"github.com/warungku-app/warungku-backend/pkg/metrics"
)

// Manager keeps one Store per signed-in user and evicts stores that have
// been idle past the configured TTL. Evicted carts are not lost: the gateway
// is the source of truth and the next request rebuilds the store via Load.
type Manager struct {
	gateway Gateway
	log     *logger.Logger
	stats   *metrics.CartMetrics
	idleTTL time.Duration

	mu      sync.Mutex
	entries map[uuid.UUID]*managerEntry
}

type managerEntry struct {
	store    *Store
	lastSeen time.Time
}

// NewManager builds a store registry over the given gateway.
func NewManager(gateway Gateway, log *logger.Logger, stats *metrics.CartMetrics, idleTTL time.Duration) (*Manager, error) {
	if gateway == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if idleTTL <= 0 {
		return nil, fmt.Errorf("idle ttl must be positive")
	}
	if log == nil {
		log = logger.New(logger.Options{ServiceName: "cart", Output: io.Discard})
	}
	return &Manager{
		gateway: gateway,
		log:     log,
		stats:   stats,
		idleTTL: idleTTL,
		entries: make(map[uuid.UUID]*managerEntry),
	}, nil
}

// StoreFor returns the user's store, creating it on first use, and marks the
// session as active.
func (m *Manager) StoreFor(userID uuid.UUID) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ent, ok := m.entries[userID]; ok {
		ent.lastSeen = time.Now()
		return ent.store, nil
	}
	store, err := NewStore(userID, m.gateway, m.log, m.stats)
	if err != nil {
		return nil, err
	}
	m.entries[userID] = &managerEntry{store: store, lastSeen: time.Now()}
	return store, nil
}

// EvictIdle drops every store whose last activity is older than the idle TTL
// and reports how many were removed.
func (m *Manager) EvictIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for userID, ent := range m.entries {
		if now.Sub(ent.lastSeen) > m.idleTTL {
			delete(m.entries, userID)
			evicted++
		}
	}
	return evicted
}

// Active reports how many stores are currently held.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Run sweeps idle stores on the given interval until the context ends.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.idleTTL / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if evicted := m.EvictIdle(now); evicted > 0 {
				m.log.Info(m.log.WithField(ctx, "evicted", evicted), "idle cart stores evicted")
			}
		}
	}
}
