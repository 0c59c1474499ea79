// Package catalog persists per-collection face embedding catalogs in blob storage.
//
// Each collection (one photo album) is backed by a single JSON blob holding
// an ordered array of records. The blob is always replaced as a whole; the
// Store serializes read-modify-write cycles per collection so concurrent
// updates never lose writes.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kozaktomas/face-gallery/internal/blob"
)

// Record is one stored face embedding. The URL of the source image acts
// as the record's identity within its collection.
type Record struct {
	URL       string    `json:"url"`
	Embedding []float32 `json:"embedding"`
}

// Valid reports whether the record can participate in similarity queries
// against a probe vector of the given dimension.
func (r Record) Valid(dim int) bool {
	return r.URL != "" && len(r.Embedding) == dim
}

// Catalog is the ordered collection of records for one collection name.
// Insertion order is preserved and used as the tie-break for equal scores.
type Catalog []Record

// BlobKey returns the storage key holding a collection's catalog.
func BlobKey(collection string) string {
	return collection + "_embeddings"
}

// CorruptError indicates that a catalog blob exists but cannot be parsed.
// It is deliberately distinct from the absent case: an unreadable catalog
// must never be silently replaced with an empty one.
type CorruptError struct {
	Collection string
	Err        error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("catalog for collection %q is corrupt: %v", e.Collection, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Store owns all read-modify-write access to catalog blobs.
type Store struct {
	blobs blob.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a catalog store on top of the given blob store.
func NewStore(blobs blob.Store) *Store {
	return &Store{
		blobs: blobs,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding a collection, creating it on first use.
func (s *Store) lockFor(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[collection]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[collection] = lock
	}
	return lock
}

// Load fetches a collection's catalog. An absent collection yields an
// empty catalog, not an error. A blob that exists but fails to parse
// yields a CorruptError.
func (s *Store) Load(ctx context.Context, collection string) (Catalog, error) {
	data, err := s.blobs.Get(ctx, BlobKey(collection))
	if errors.Is(err, blob.ErrNotFound) {
		return Catalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading catalog for %q: %w", collection, err)
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, &CorruptError{Collection: collection, Err: err}
	}
	return cat, nil
}

// Save serializes the catalog and overwrites the blob in full.
func (s *Store) Save(ctx context.Context, collection string, cat Catalog) error {
	if cat == nil {
		cat = Catalog{}
	}
	data, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("encoding catalog for %q: %w", collection, err)
	}
	if err := s.blobs.Put(ctx, BlobKey(collection), data); err != nil {
		return fmt.Errorf("saving catalog for %q: %w", collection, err)
	}
	return nil
}

// Update runs load -> mutate -> save as one unit, serialized per collection
// name. Concurrent updates of the same collection never interleave their
// load/save pairs; updates of different collections run in parallel.
// If the mutator returns an error, nothing is written.
func (s *Store) Update(ctx context.Context, collection string, mutate func(Catalog) (Catalog, error)) error {
	lock := s.lockFor(collection)
	lock.Lock()
	defer lock.Unlock()

	cat, err := s.Load(ctx, collection)
	if err != nil {
		return err
	}

	next, err := mutate(cat)
	if err != nil {
		return err
	}

	return s.Save(ctx, collection, next)
}
