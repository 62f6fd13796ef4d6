package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/auth-service/internal/domain"
)

var _ SessionRepository = (*MemorySessionRepository)(nil)

// MemorySessionRepository keeps session entries in process memory. Entries do
// not survive a restart.
type MemorySessionRepository struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemorySessionRepository returns an empty store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{entries: make(map[string]string)}
}

func (r *MemorySessionRepository) Put(_ context.Context, userID, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = refreshToken
	return nil
}

func (r *MemorySessionRepository) Get(_ context.Context, userID string) (*domain.SessionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.entries[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &domain.SessionEntry{UserID: userID, RefreshToken: token}, nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
	return nil
}
