package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

func TestSessionRepositorySaveGetDelete(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	s := store.NewSession(uuid.New(), registry.PersonalitySommelier, 0, nil)

	repo.Save(s)

	got, ok := repo.Get(s.ID)
	assert.True(t, ok)
	assert.Same(t, s, got)

	_, ok = repo.Get("unknown")
	assert.False(t, ok)

	repo.Delete(s.ID)
	_, ok = repo.Get(s.ID)
	assert.False(t, ok)
}

func TestSessionRepositoryTTL(t *testing.T) {
	repo := NewSessionRepository(30 * time.Millisecond)
	s := store.NewSession(uuid.New(), registry.PersonalityCasual, 0, nil)
	repo.Save(s)

	time.Sleep(60 * time.Millisecond)

	_, ok := repo.Get(s.ID)
	assert.False(t, ok, "session survived its ttl")
}

func TestSessionRepositoryTouchExtendsTTL(t *testing.T) {
	repo := NewSessionRepository(80 * time.Millisecond)
	s := store.NewSession(uuid.New(), registry.PersonalitySommelier, 0, nil)
	repo.Save(s)

	for i := 0; i < 3; i++ {
		time.Sleep(50 * time.Millisecond)
		repo.Touch(s.ID)
	}

	_, ok := repo.Get(s.ID)
	assert.True(t, ok, "touched session expired")
}
