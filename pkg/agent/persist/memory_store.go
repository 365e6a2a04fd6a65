package persist

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps snapshots in process memory. The development and
// single-instance fallback when redis is not configured.
type MemoryStore struct {
	cache *cache.Cache

	// maxBlob simulates a storage quota; zero disables the check.
	maxBlob int
}

func NewMemoryStore(ttl time.Duration, maxBlob int) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		cache:   cache.New(ttl, 10*time.Minute),
		maxBlob: maxBlob,
	}
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, data []byte) error {
	if m.maxBlob > 0 && len(data) > m.maxBlob {
		return ErrQuotaExceeded
	}
	m.cache.Set(sessionID, data, cache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) ([]byte, error) {
	if x, found := m.cache.Get(sessionID); found {
		return x.([]byte), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.cache.Delete(sessionID)
	return nil
}
