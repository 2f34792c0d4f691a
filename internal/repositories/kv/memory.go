package kv

import (
	"bytes"
	"context"
	"sync"
)

// MemoryRepository keeps values in a map. Used by tests and the "memory"
// store driver; nothing survives the process.
type MemoryRepository struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(v), nil
}

func (r *MemoryRepository) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = bytes.Clone(value)
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, key)
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, key string, fn UpdateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current []byte
	if v, ok := r.data[key]; ok {
		current = bytes.Clone(v)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	r.data[key] = bytes.Clone(next)
	return nil
}
