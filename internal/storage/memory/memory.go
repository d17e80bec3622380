// Package memory provides an in-memory BlobStore for tests and local
// development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/utafrali/ReviewModerationGo/internal/storage"
	"github.com/utafrali/ReviewModerationGo/pkg/errors"
)

// Store implements storage.BlobStore backed by a map.
type Store struct {
	mu      sync.RWMutex
	objects map[string]storage.Object
}

// New creates an empty in-memory blob store.
func New() *Store {
	return &Store{objects: make(map[string]storage.Object)}
}

// Put stores a copy of the object under the reference.
func (s *Store) Put(_ context.Context, ref storage.BlobRef, obj *storage.Object) error {
	body := make([]byte, len(obj.Body))
	copy(body, obj.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[ref.String()] = storage.Object{ContentType: obj.ContentType, Body: body}
	return nil
}

// Get retrieves a copy of the stored object.
func (s *Store) Get(_ context.Context, ref storage.BlobRef) (*storage.Object, error) {
	s.mu.RLock()
	obj, exists := s.objects[ref.String()]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("blob %s: %w", ref, errors.ErrNotFound)
	}

	body := make([]byte, len(obj.Body))
	copy(body, obj.Body)
	return &storage.Object{ContentType: obj.ContentType, Body: body}, nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
