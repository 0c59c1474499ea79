package catalog

import "context"

// Remove deletes all records matching the identity from a collection.
// Returns true when at least one record was removed. An absent collection
// is a no-op; a catalog emptied by removal stays persisted as an empty
// catalog rather than being deleted.
func (s *Store) Remove(ctx context.Context, collection, identity string) (bool, error) {
	removed := false

	err := s.Update(ctx, collection, func(cat Catalog) (Catalog, error) {
		kept := make(Catalog, 0, len(cat))
		for _, rec := range cat {
			if rec.URL == identity {
				removed = true
				continue
			}
			kept = append(kept, rec)
		}
		if !removed {
			// Nothing matched; keep the blob byte-for-byte untouched
			// (and avoid creating one for an absent collection).
			return nil, errNoChange
		}
		return kept, nil
	})

	if err == errNoChange {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return removed, nil
}

// errNoChange aborts an Update without writing. Internal to Remove.
var errNoChange = &noChangeError{}

type noChangeError struct{}

func (*noChangeError) Error() string { return "no change" }
