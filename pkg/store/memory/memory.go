// Package memory provides an in-process [store.Store].
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/matzehuels/imagehub/pkg/store"
)

// Store keeps documents in maps. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	docs   map[store.Kind]map[string][]byte
	closed bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.docs = map[store.Kind]map[string][]byte{
		store.KindManifest: {},
		store.KindCanvas:   {},
	}
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	s.reset()
	return nil
}

func (s *Store) PutCanvas(ctx context.Context, doc store.Document) error {
	return s.put(store.KindCanvas, doc)
}

func (s *Store) PutManifest(ctx context.Context, doc store.Document) error {
	return s.put(store.KindManifest, doc)
}

func (s *Store) put(kind store.Kind, doc store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	s.docs[kind][doc.ID] = bytes.Clone(doc.Data)
	return nil
}

func (s *Store) Flush(ctx context.Context) error { return nil }

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Get returns the document of kind with id.
func (s *Store) Get(kind store.Kind, id string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[kind][id]
	return data, ok
}

// Len returns the number of documents of kind.
func (s *Store) Len(kind store.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[kind])
}

// List returns the documents of kind ordered by ID.
func (s *Store) List(ctx context.Context, kind store.Kind) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Document, 0, len(s.docs[kind]))
	for id, data := range s.docs[kind] {
		out = append(out, store.Document{ID: id, Data: bytes.Clone(data)})
	}
	store.SortDocuments(out)
	return out, nil
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Lister = (*Store)(nil)
)
