package match

import (
	"context"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/face-gallery/internal/vecmath"
)

const (
	// maxNeighbors is the HNSW M parameter.
	maxNeighbors = 16
	// neighborCandidates is how many approximate neighbors are examined
	// per record when grouping.
	neighborCandidates = 8
)

// SimilarGroups clusters a collection's records into groups of mutually
// similar faces (cosine similarity >= threshold). Candidate pairs come
// from an HNSW graph; final scores are always recomputed exactly, so the
// index only affects recall, never a reported similarity.
//
// Groups contain at least two records, keep catalog insertion order
// internally, and are ordered by their earliest record.
func (e *Engine) SimilarGroups(ctx context.Context, collection string, threshold float64) ([][]string, error) {
	cat, err := e.catalogs.Load(ctx, collection)
	if err != nil {
		return nil, err
	}

	// Index only well-formed records; use the first valid record's
	// dimension as the collection's dimension.
	dim := 0
	for _, rec := range cat {
		if rec.URL != "" && len(rec.Embedding) > 0 {
			dim = len(rec.Embedding)
			break
		}
	}
	if dim == 0 {
		return [][]string{}, nil
	}

	var indices []int
	for i, rec := range cat {
		if rec.Valid(dim) {
			indices = append(indices, i)
		}
	}
	if len(indices) < 2 {
		return [][]string{}, nil
	}

	g := hnsw.NewGraph[int]()
	g.M = maxNeighbors
	g.Ml = 1.0 / float64(maxNeighbors)
	g.Distance = hnsw.CosineDistance
	for _, i := range indices {
		g.Add(hnsw.MakeNode(i, cat[i].Embedding))
	}

	parent := make(map[int]int, len(indices))
	for _, i := range indices {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if rb < ra {
				ra, rb = rb, ra
			}
			parent[rb] = ra
		}
	}

	for _, i := range indices {
		neighbors := g.Search(cat[i].Embedding, neighborCandidates)
		for _, n := range neighbors {
			if n.Key == i {
				continue
			}
			if vecmath.Cosine(cat[i].Embedding, cat[n.Key].Embedding) >= threshold {
				union(i, n.Key)
			}
		}
	}

	members := make(map[int][]int)
	for _, i := range indices {
		root := find(i)
		members[root] = append(members[root], i)
	}

	var roots []int
	for root, group := range members {
		if len(group) >= 2 {
			roots = append(roots, root)
		}
	}
	// map iteration order is random; order groups by earliest record.
	for i := range len(roots) - 1 {
		for j := i + 1; j < len(roots); j++ {
			if roots[j] < roots[i] {
				roots[i], roots[j] = roots[j], roots[i]
			}
		}
	}

	groups := make([][]string, 0, len(roots))
	for _, root := range roots {
		urls := make([]string, 0, len(members[root]))
		for _, i := range members[root] {
			urls = append(urls, cat[i].URL)
		}
		groups = append(groups, urls)
	}
	return groups, nil
}
