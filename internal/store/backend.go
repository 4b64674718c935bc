package store

import (
	"errors"
	"sort"
	"sync"
)

// ErrUnavailable is returned by backends that cannot be used at all
// (storage disabled, private browsing, no browser).
var ErrUnavailable = errors.New("store: storage unavailable")

// ErrQuotaExceeded is returned by MemoryBackend when FailWrites is set or
// the key was passed to FailKey.
var ErrQuotaExceeded = errors.New("store: quota exceeded")

// Backend is a synchronous string key-value store.
// Get reports ok=false for a missing key; err is reserved for failures.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
	Keys() ([]string, error)
}

// MemoryBackend is an in-process Backend.
// Thread-safe; used in tests and as the fallback outside the browser.
type MemoryBackend struct {
	mu       sync.RWMutex
	data     map[string]string
	failKeys map[string]bool

	// FailWrites makes Set return ErrQuotaExceeded, simulating a full store.
	FailWrites bool
	// Disabled makes every call return ErrUnavailable.
	Disabled bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

func (m *MemoryBackend) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Disabled {
		return "", false, ErrUnavailable
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Disabled {
		return ErrUnavailable
	}
	if m.FailWrites || m.failKeys[key] {
		return ErrQuotaExceeded
	}
	m.data[key] = value
	return nil
}

func (m *MemoryBackend) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Disabled {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}

// FailKey makes every later Set of key fail with ErrQuotaExceeded.
// Pass on=false to let writes through again.
func (m *MemoryBackend) FailKey(key string, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failKeys == nil {
		m.failKeys = make(map[string]bool)
	}
	m.failKeys[key] = on
}

// Keys returns all keys in sorted order.
func (m *MemoryBackend) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Disabled {
		return nil, ErrUnavailable
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of stored keys.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Compile-time interface check
var _ Backend = (*MemoryBackend)(nil)
