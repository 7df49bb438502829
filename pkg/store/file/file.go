// Package file writes manifests and canvases as JSON files.
//
// Documents land below <dir>/manifests and <dir>/canvases at the path of
// their identifier relative to the service URL, so a manifest with ID
// <service>100/manifest.json is written to manifests/100/manifest.json.
package file

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/imagehub/pkg/errors"
	"github.com/matzehuels/imagehub/pkg/store"
)

var subdirs = map[store.Kind]string{
	store.KindManifest: "manifests",
	store.KindCanvas:   "canvases",
}

// Store is a directory-backed store.
type Store struct {
	mu      sync.Mutex
	dir     string
	baseURL string
}

// NewStore creates a store writing below dir. baseURL is the service URL
// stripped from document IDs to form file paths.
func NewStore(dir, baseURL string) (*Store, error) {
	if err := errors.ValidateOutputDir(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the output directory.
func (s *Store) Dir() string { return s.dir }

// Clear removes the manifest and canvas trees. Other files in the output
// directory are left alone.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range subdirs {
		if err := os.RemoveAll(filepath.Join(s.dir, sub)); err != nil {
			return fmt.Errorf("clear %s: %w", sub, err)
		}
	}
	return nil
}

func (s *Store) PutCanvas(ctx context.Context, doc store.Document) error {
	return s.put(store.KindCanvas, doc)
}

func (s *Store) PutManifest(ctx context.Context, doc store.Document) error {
	return s.put(store.KindManifest, doc)
}

func (s *Store) put(kind store.Kind, doc store.Document) error {
	path, err := s.path(kind, doc.ID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s dir: %w", kind, err)
	}
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	return nil
}

// path maps an identifier to a file below the kind's subdirectory.
func (s *Store) path(kind store.Kind, id string) (string, error) {
	rel, ok := strings.CutPrefix(id, s.baseURL)
	if !ok || s.baseURL == "" {
		u, err := url.Parse(id)
		if err != nil {
			return "", fmt.Errorf("document id %q: %w", id, err)
		}
		rel = u.Path
	}
	rel = strings.TrimLeft(rel, "/")
	clean := filepath.Clean(filepath.FromSlash(rel))
	if rel == "" || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.ErrCodeInvalidPath, "document id %q does not map to a file", id)
	}
	return filepath.Join(s.dir, subdirs[kind], clean), nil
}

func (s *Store) Flush(ctx context.Context) error { return nil }

func (s *Store) Close(ctx context.Context) error { return nil }

// List returns the documents of kind ordered by ID.
func (s *Store) List(ctx context.Context, kind store.Kind) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root := filepath.Join(s.dir, subdirs[kind])
	var docs []store.Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		docs = append(docs, store.Document{ID: s.baseURL + filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	store.SortDocuments(docs)
	return docs, nil
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Lister = (*Store)(nil)
)
