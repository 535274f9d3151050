package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cache is a keyed result cache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every item.
	Purge()
	Size() int
}

// Cleaner is implemented by caches that expire items.
type Cleaner interface {
	CleanExpired() int
	Purge()
}

// Manager owns a set of caches: it expires them periodically and purges
// them together when the underlying data changes.
//
// Every purge starts a new generation. A reader that loaded data during an
// older generation must not store it; see StoreIf.
type Manager struct {
	mu          sync.Mutex
	caches      []Cleaner
	generation  uint64
	logger      *slog.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:      logger,
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the manager
func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// PurgeAll empties every registered cache and starts a new generation.
func (m *Manager) PurgeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	for _, c := range m.caches {
		c.Purge()
	}
}

// Generation returns the current generation. Read it before loading the
// data that will be cached.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// StoreIf runs store only while gen is still the current generation, and
// reports whether it ran. Holding the lock keeps a concurrent PurgeAll from
// slipping in between the check and the store.
func (m *Manager) StoreIf(gen uint64, store func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return false
	}
	store()
	return true
}

// StartCleanup begins periodic expiry of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			cleaned := 0
			for _, c := range m.caches {
				cleaned += c.CleanExpired()
			}
			m.mu.Unlock()
			if cleaned > 0 {
				m.logger.Debug("Expired cache items removed", "count", cleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup routine, if it was started.
func (m *Manager) Stop() {
	m.mu.Lock()
	started := m.started
	m.started = false
	m.mu.Unlock()
	if started {
		close(m.stopCleanup)
		<-m.cleanupDone
	}
}
