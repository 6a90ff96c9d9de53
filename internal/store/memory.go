package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/shortlink/internal/shortlink"
)

// MemoryStore is an in-memory implementation of shortlink.Repository used
// for development and tests. All operations mirror the conditional-write
// semantics of the Postgres store.
type MemoryStore struct {
	mu     sync.RWMutex
	links  map[shortlink.Code]*shortlink.ShortLink
	tokens map[string]shortlink.Code // ownerToken -> code
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:  make(map[shortlink.Code]*shortlink.ShortLink),
		tokens: make(map[string]shortlink.Code),
	}
}

func (m *MemoryStore) Insert(_ context.Context, link *shortlink.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Code]; ok {
		return shortlink.ErrCodeTaken
	}

	clone := *link
	m.links[link.Code] = &clone
	m.tokens[link.OwnerToken] = link.Code

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortlink.Code) (*shortlink.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortlink.ErrNotFound
	}

	clone := *link

	return &clone, nil
}

func (m *MemoryStore) GetByOwnerToken(_ context.Context, ownerToken string) (*shortlink.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.tokens[ownerToken]
	if !ok {
		return nil, shortlink.ErrNotFound
	}

	link := m.links[code]
	if link == nil || link.Status == shortlink.StatusDeleted {
		return nil, shortlink.ErrNotFound
	}

	clone := *link

	return &clone, nil
}

func (m *MemoryStore) UpdateTarget(_ context.Context, code shortlink.Code, ownerToken, targetURL string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok {
		return shortlink.ErrNotFound
	}

	if link.OwnerToken != ownerToken {
		return shortlink.ErrForbidden
	}

	if link.Status == shortlink.StatusDeleted {
		return shortlink.ErrNotFound
	}

	link.TargetURL = targetURL
	link.UpdatedAt = updatedAt

	return nil
}

func (m *MemoryStore) MarkDeleted(_ context.Context, code shortlink.Code, ownerToken string, deletedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok {
		return shortlink.ErrNotFound
	}

	if link.OwnerToken != ownerToken {
		return shortlink.ErrForbidden
	}

	// Idempotent: re-deleting with the correct token is a no-op success.
	if link.Status == shortlink.StatusDeleted {
		return nil
	}

	link.Status = shortlink.StatusDeleted
	link.UpdatedAt = deletedAt

	return nil
}

func (m *MemoryStore) CountActive(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64

	for _, link := range m.links {
		if link.Status == shortlink.StatusActive {
			count++
		}
	}

	return count, nil
}

// Compile-time check.
var _ shortlink.Repository = (*MemoryStore)(nil)
