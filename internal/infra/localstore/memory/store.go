// Package memory implements an in-process snapshot store.
package memory

import (
	"cemeterycore/internal/localstore/core"
	"context"
	"strings"
	"sync"
)

// Store keeps snapshots in a map guarded by a RWMutex.
type Store struct {
	mu   sync.RWMutex
	objs map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store { return &Store{objs: make(map[string][]byte)} }

// Driver returns the storage driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Load returns a copy of the stored payload.
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(ctx, key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	data, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(data), true, nil
}

// Save stores a copy of data under key, replacing any previous payload.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[key] = cloneBytes(data)
	return nil
}

// Remove deletes key if present.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objs, key)
	return nil
}

func checkKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return core.ErrInvalidKey
	}
	return nil
}

func cloneBytes(in []byte) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
