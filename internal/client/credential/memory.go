package credential

import (
	"context"
	"sync"

	"client-vault/internal/domain/identity"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[identity.Role]identity.ClientIdentity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[identity.Role]identity.ClientIdentity)}
}

func (s *MemoryStore) Get(_ context.Context, role identity.Role) (*identity.ClientIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.records[role]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (s *MemoryStore) Set(_ context.Context, role identity.Role, id identity.ClientIdentity) error {
	if !id.Valid() {
		return ErrInvalidIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[role] = id
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, role identity.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, role)
	return nil
}
