package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/kozaktomas/face-gallery/internal/blob"
	"github.com/kozaktomas/face-gallery/internal/blob/mock"
)

func TestLoadAbsentCollection(t *testing.T) {
	store := NewStore(mock.NewMockStore())

	cat, err := store.Load(context.Background(), "empty-album")
	if err != nil {
		t.Fatalf("Load(absent) returned error: %v", err)
	}
	if len(cat) != 0 {
		t.Errorf("Load(absent) returned %d records; want 0", len(cat))
	}
}

func TestLoadCorruptCatalog(t *testing.T) {
	blobs := mock.NewMockStore()
	blobs.Seed("broken_embeddings", []byte("{not json"))
	store := NewStore(blobs)

	_, err := store.Load(context.Background(), "broken")
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("Load(corrupt) = %v; want CorruptError", err)
	}
	if corrupt.Collection != "broken" {
		t.Errorf("CorruptError.Collection = %q; want %q", corrupt.Collection, "broken")
	}
}

func TestLoadStorageError(t *testing.T) {
	blobs := mock.NewMockStore()
	blobs.GetError = errors.New("backend unreachable")
	store := NewStore(blobs)

	if _, err := store.Load(context.Background(), "any"); err == nil {
		t.Error("Load with failing backend succeeded; want error")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := NewStore(mock.NewMockStore())
	ctx := context.Background()

	cat := Catalog{
		{URL: "http://example.com/a.jpg", Embedding: []float32{1, 0}},
		{URL: "http://example.com/b.jpg", Embedding: []float32{0, 1}},
	}
	if err := store.Save(ctx, "trip", cat); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "trip")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Load returned %d records; want 2", len(loaded))
	}
	if loaded[0].URL != "http://example.com/a.jpg" || loaded[1].URL != "http://example.com/b.jpg" {
		t.Errorf("record order not preserved: %+v", loaded)
	}
}

func TestSaveEmptyCatalogWritesArray(t *testing.T) {
	blobs := mock.NewMockStore()
	store := NewStore(blobs)
	ctx := context.Background()

	if err := store.Save(ctx, "cleared", nil); err != nil {
		t.Fatalf("Save(nil) failed: %v", err)
	}

	data, err := blobs.Get(ctx, "cleared_embeddings")
	if err != nil {
		t.Fatalf("blob missing after Save: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("empty catalog serialized as %q; want []", data)
	}
}

func TestUpdateAbortsOnCorruptCatalog(t *testing.T) {
	blobs := mock.NewMockStore()
	blobs.Seed("damaged_embeddings", []byte("]["))
	store := NewStore(blobs)

	mutatorRan := false
	err := store.Update(context.Background(), "damaged", func(cat Catalog) (Catalog, error) {
		mutatorRan = true
		return cat, nil
	})

	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("Update on corrupt catalog = %v; want CorruptError", err)
	}
	if mutatorRan {
		t.Error("mutator ran despite corrupt catalog")
	}
	// The broken blob must not have been overwritten.
	data, _ := blobs.Get(context.Background(), "damaged_embeddings")
	if string(data) != "][" {
		t.Errorf("corrupt blob was rewritten to %q", data)
	}
}

func TestUpdateMutatorErrorSkipsWrite(t *testing.T) {
	blobs := mock.NewMockStore()
	store := NewStore(blobs)

	wantErr := errors.New("mutation refused")
	err := store.Update(context.Background(), "untouched", func(cat Catalog) (Catalog, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Update = %v; want mutator error", err)
	}
	if blobs.Has("untouched_embeddings") {
		t.Error("Update wrote a blob although the mutator failed")
	}
}

// TestConcurrentUpdatesSameCollection is the lost-update regression test:
// two concurrent batches of appends against one collection must all survive.
func TestConcurrentUpdatesSameCollection(t *testing.T) {
	store := NewStore(mock.NewMockStore())
	ctx := context.Background()

	appendBatch := func(prefix string) error {
		return store.Update(ctx, "shared", func(cat Catalog) (Catalog, error) {
			for i := range 5 {
				cat = append(cat, Record{
					URL:       fmt.Sprintf("http://example.com/%s-%d.jpg", prefix, i),
					Embedding: []float32{1, 0},
				})
			}
			return cat, nil
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, prefix := range []string{"left", "right"} {
		wg.Add(1)
		go func(i int, prefix string) {
			defer wg.Done()
			errs[i] = appendBatch(prefix)
		}(i, prefix)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent update %d failed: %v", i, err)
		}
	}

	cat, err := store.Load(ctx, "shared")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat) != 10 {
		t.Errorf("catalog holds %d records after concurrent updates; want 10", len(cat))
	}
}

func TestRemove(t *testing.T) {
	store := NewStore(mock.NewMockStore())
	ctx := context.Background()

	seed := Catalog{
		{URL: "http://example.com/keep.jpg", Embedding: []float32{1, 0}},
		{URL: "http://example.com/drop.jpg", Embedding: []float32{0, 1}},
		{URL: "http://example.com/drop.jpg", Embedding: []float32{0, 1}},
	}
	if err := store.Save(ctx, "album", seed); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	removed, err := store.Remove(ctx, "album", "http://example.com/drop.jpg")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Error("Remove = false; want true")
	}

	cat, err := store.Load(ctx, "album")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat) != 1 || cat[0].URL != "http://example.com/keep.jpg" {
		t.Errorf("catalog after Remove = %+v; want only keep.jpg", cat)
	}
}

// Removing the same identity twice: true then false, content unchanged.
func TestRemoveIdempotence(t *testing.T) {
	store := NewStore(mock.NewMockStore())
	ctx := context.Background()

	seed := Catalog{{URL: "http://example.com/once.jpg", Embedding: []float32{1}}}
	if err := store.Save(ctx, "album", seed); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	first, err := store.Remove(ctx, "album", "http://example.com/once.jpg")
	if err != nil || !first {
		t.Fatalf("first Remove = (%v, %v); want (true, nil)", first, err)
	}
	afterFirst, err := store.Load(ctx, "album")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	second, err := store.Remove(ctx, "album", "http://example.com/once.jpg")
	if err != nil || second {
		t.Fatalf("second Remove = (%v, %v); want (false, nil)", second, err)
	}
	afterSecond, err := store.Load(ctx, "album")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(afterFirst) != 0 || len(afterSecond) != 0 {
		t.Errorf("catalog content diverged: first=%v second=%v", afterFirst, afterSecond)
	}
}

func TestRemoveAbsentCollection(t *testing.T) {
	blobs := mock.NewMockStore()
	store := NewStore(blobs)

	removed, err := store.Remove(context.Background(), "missing", "http://example.com/x.jpg")
	if err != nil {
		t.Fatalf("Remove on absent collection failed: %v", err)
	}
	if removed {
		t.Error("Remove on absent collection = true; want false")
	}
	if blobs.Has("missing_embeddings") {
		t.Error("Remove on absent collection created a catalog blob")
	}
}

func TestRemoveEmptiedCatalogStaysPersisted(t *testing.T) {
	blobs := mock.NewMockStore()
	store := NewStore(blobs)
	ctx := context.Background()

	seed := Catalog{{URL: "http://example.com/solo.jpg", Embedding: []float32{1}}}
	if err := store.Save(ctx, "album", seed); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Remove(ctx, "album", "http://example.com/solo.jpg"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	data, err := blobs.Get(ctx, "album_embeddings")
	if err != nil {
		t.Fatalf("catalog blob missing after emptying removal: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("emptied catalog stored as %q; want []", data)
	}
}

func TestRemovePropagatesStorageError(t *testing.T) {
	blobs := mock.NewMockStore()
	blobs.Seed("album_embeddings", []byte(`[{"url":"u","embedding":[1]}]`))
	blobs.PutError = errors.New("write refused")
	store := NewStore(blobs)

	if _, err := store.Remove(context.Background(), "album", "u"); err == nil {
		t.Error("Remove with failing backend succeeded; want error")
	}
}

// Wire-format compatibility: existing catalogs are plain JSON arrays of
// {url, embedding} objects and must keep loading as-is.
func TestLoadLegacyFormat(t *testing.T) {
	blobs := mock.NewMockStore()
	blobs.Seed("legacy_embeddings",
		[]byte(`[{"url":"http://cdn.example.com/old.jpg","embedding":[0.5,-0.25,0.125]}]`))
	store := NewStore(blobs)

	cat, err := store.Load(context.Background(), "legacy")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat) != 1 {
		t.Fatalf("Load returned %d records; want 1", len(cat))
	}
	rec := cat[0]
	if rec.URL != "http://cdn.example.com/old.jpg" || len(rec.Embedding) != 3 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if !rec.Valid(3) || rec.Valid(128) {
		t.Error("Valid dimension check misbehaved for legacy record")
	}
}

var _ blob.Store = (*mock.MockStore)(nil)
