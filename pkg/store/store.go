// Package store defines where generated manifests and canvases are written.
//
// A run rebuilds the store from scratch: [Store.Clear] removes everything,
// then each manifest and canvas is written once keyed by its identity URI.
// Backends:
//   - memory: in-process maps for tests and dry runs
//   - file: JSON files below a directory
//   - mongo: the "manifest" and "canvas" collections of a MongoDB database
package store

import (
	"context"
	"errors"
	"sort"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Kind tells manifests and canvases apart.
type Kind string

const (
	KindManifest Kind = "manifest"
	KindCanvas   Kind = "canvas"
)

// Document is a serialized manifest or canvas keyed by its identity URI.
type Document struct {
	ID   string
	Data []byte
}

// Store is the interface for manifest storage backends.
type Store interface {
	// Clear removes all manifests and canvases.
	Clear(ctx context.Context) error

	// PutCanvas writes a canvas, replacing any document with the same ID.
	PutCanvas(ctx context.Context, doc Document) error

	// PutManifest writes a manifest, replacing any document with the same ID.
	PutManifest(ctx context.Context, doc Document) error

	// Flush returns once every earlier write is durable.
	Flush(ctx context.Context) error

	// Close releases the backend.
	Close(ctx context.Context) error
}

// Lister is implemented by backends that can enumerate their contents.
type Lister interface {
	List(ctx context.Context, kind Kind) ([]Document, error)
}

// SortDocuments orders docs by ID.
func SortDocuments(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
