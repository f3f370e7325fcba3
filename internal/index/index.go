package index

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDimensionMismatch reports a vector of unexpected dimensionality reaching
// the index. It indicates a fit/embed contract violation, not a user error.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Entry is one scored candidate returned by Search.
type Entry struct {
	ID    string
	Score float64
}

// Index is an immutable in-memory similarity index: one vector per scroll id,
// scored by cosine similarity over a full linear scan. The corpus is small
// enough that O(n) beats maintaining an approximate-nearest-neighbor
// structure. Because the data never changes after Build, concurrent Search
// calls are safe without locking.
type Index struct {
	dimension int
	ids       []string
	vectors   [][]float64
}

// Build constructs an index from parallel id and vector slices. Every vector
// must share the same dimensionality; a mismatch fails loudly with
// ErrDimensionMismatch. The inputs are copied, so later mutation by the
// caller cannot tear the index.
func Build(ids []string, vectors [][]float64) (*Index, error) {
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	x := &Index{
		ids:     make([]string, len(ids)),
		vectors: make([][]float64, len(vectors)),
	}
	copy(x.ids, ids)
	for i, v := range vectors {
		if i == 0 {
			x.dimension = len(v)
		}
		if len(v) != x.dimension {
			return nil, fmt.Errorf("%w: vector %q has %d dims, want %d", ErrDimensionMismatch, ids[i], len(v), x.dimension)
		}
		x.vectors[i] = append([]float64(nil), v...)
	}
	return x, nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int { return len(x.ids) }

// Dimension returns the shared dimensionality of the indexed vectors.
func (x *Index) Dimension() int { return x.dimension }

// Search scores the query vector against every stored vector and returns up
// to topK entries, most similar first. Ties keep corpus insertion order.
// allowed, when non-nil, restricts candidates to ids it approves. Vectors are
// L2-normalized by the embedder, so the dot product is the cosine similarity.
func (x *Index) Search(vector []float64, topK int, allowed func(id string) bool) ([]Entry, error) {
	if x.Len() == 0 {
		return nil, nil
	}
	if len(vector) != x.dimension {
		return nil, fmt.Errorf("%w: query has %d dims, want %d", ErrDimensionMismatch, len(vector), x.dimension)
	}
	if topK <= 0 {
		topK = 1
	}
	entries := make([]Entry, 0, len(x.ids))
	for i, id := range x.ids {
		if allowed != nil && !allowed(id) {
			continue
		}
		entries = append(entries, Entry{ID: id, Score: dot(x.vectors[i], vector)})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if topK > len(entries) {
		topK = len(entries)
	}
	return entries[:topK], nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
