// Package match ranks catalog records by similarity to a probe face.
package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/kozaktomas/face-gallery/internal/catalog"
	"github.com/kozaktomas/face-gallery/internal/extractor"
	"github.com/kozaktomas/face-gallery/internal/vecmath"
)

// Match is one ranked query result.
type Match struct {
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Engine answers similarity queries against stored catalogs.
type Engine struct {
	catalogs *catalog.Store
	faces    extractor.Extractor
}

// NewEngine creates a query engine.
func NewEngine(catalogs *catalog.Store, faces extractor.Extractor) *Engine {
	return &Engine{catalogs: catalogs, faces: faces}
}

// Query extracts the dominant face from the probe image and returns all
// records scoring strictly above the threshold, ranked by descending
// cosine similarity. Equal scores keep their catalog insertion order.
// A limit of 0 returns the full ranked set.
//
// A probe without a detectable face fails the whole request with
// extractor.ErrNoFace. An absent collection yields an empty result.
func (e *Engine) Query(ctx context.Context, collection string, probe []byte, threshold float64, limit int) ([]Match, error) {
	embedding, err := e.faces.Extract(ctx, probe)
	if err != nil {
		return nil, err
	}
	if err := vecmath.Normalize(embedding); err != nil {
		return nil, fmt.Errorf("probe embedding unusable: %w", err)
	}

	return e.QueryVector(ctx, collection, embedding, threshold, limit)
}

// QueryVector ranks a collection against an already extracted probe vector.
func (e *Engine) QueryVector(ctx context.Context, collection string, probe []float32, threshold float64, limit int) ([]Match, error) {
	cat, err := e.catalogs.Load(ctx, collection)
	if err != nil {
		return nil, err
	}

	dim := len(probe)
	matches := make([]Match, 0, len(cat))
	for _, rec := range cat {
		// Malformed records are skipped, never fatal for the query.
		if !rec.Valid(dim) {
			continue
		}
		score := vecmath.Cosine(probe, rec.Embedding)
		if score > threshold {
			matches = append(matches, Match{URL: rec.URL, Score: score})
		}
	}

	// Stable keeps insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
