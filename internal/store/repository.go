package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a Repository when a key has no document.
var ErrNotFound = errors.New("store: document not found")

// Repository is the key-value backend behind the aggregate store. It
// holds one encoded debate document per id and knows nothing about the
// shape of the document.
type Repository interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, doc []byte) error
}

// MemoryRepository is a process-local Repository.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string][]byte)}
}

// Load returns a copy of the document stored under id.
func (r *MemoryRepository) Load(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}

// Save replaces the document stored under id.
func (r *MemoryRepository) Save(ctx context.Context, id string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[id] = append([]byte(nil), doc...)
	return nil
}
