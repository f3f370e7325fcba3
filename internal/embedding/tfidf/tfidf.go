package tfidf

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"hedwig/internal/embedding"
	"hedwig/internal/textnorm"
)

// DefaultComponents is the target dimensionality of the reduced embedding
// space. The effective dimension is capped by corpus and vocabulary size.
const DefaultComponents = 128

// ErrEmptyCorpus is returned by Prepare when there is nothing to fit on.
var ErrEmptyCorpus = errors.New("empty corpus for tf-idf prepare")

// Embedder is a TF-IDF vectorizer followed by a truncated-SVD projection.
// Prepare builds a vocabulary, smoothed IDF weights and a linear basis from
// the corpus; Embed maps text into the reduced space using that basis.
// Fitting is fully deterministic: the vocabulary is sorted and the
// factorization carries no randomness, so two runs over the same corpus
// produce identical vectors.
type Embedder struct {
	components int

	vocabulary map[string]int
	idf        []float64
	basis      *mat.Dense // vocabulary size x dimension
	dimension  int
	prepared   bool
}

// NewEmbedder creates an unprepared TF-IDF embedder. components is the upper
// bound on the reduced dimensionality; values <= 0 select DefaultComponents.
func NewEmbedder(components int) *Embedder {
	if components <= 0 {
		components = DefaultComponents
	}
	return &Embedder{components: components}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary, IDF weights and projection basis from the
// corpus. It must be called exactly once before Embed; the embedder is
// read-only afterward and safe for concurrent Embed calls.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}
	docs := make([][]string, len(corpus))
	df := make(map[string]int)
	for i, text := range corpus {
		docs[i] = textnorm.Tokenize(text)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, tok := range docs[i] {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus")
	}
	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		// Smoothed IDF
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	// Corpus matrix of L2-normalized TF-IDF rows, factorized once to obtain
	// the projection basis (the leading right singular vectors).
	m := mat.NewDense(len(corpus), len(terms), nil)
	for i, tokens := range docs {
		idxs, weights := e.rawWeights(tokens)
		for j, idx := range idxs {
			m.Set(i, idx, weights[j])
		}
	}
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return errors.New("svd factorization of corpus matrix failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	_, available := v.Dims()
	k := e.components
	if k > available {
		k = available
	}
	e.basis = mat.DenseCopyOf(v.Slice(0, len(terms), 0, k))
	e.dimension = k
	e.prepared = true
	return nil
}

// Dimension returns the dimensionality of the produced embedding vectors.
// It is fixed at Prepare time and never changes without a full re-fit.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the reduced TF-IDF embedding for the given text.
// Out-of-vocabulary terms contribute zero weight; text with no known terms
// yields the zero vector, never an error.
func (e *Embedder) Embed(text string) ([]float64, error) {
	if !e.prepared {
		return nil, embedding.ErrNotPrepared
	}
	idxs, weights := e.rawWeights(textnorm.Tokenize(text))
	vec := make([]float64, e.dimension)
	for i, idx := range idxs {
		for j := 0; j < e.dimension; j++ {
			vec[j] += weights[i] * e.basis.At(idx, j)
		}
	}
	normalize(vec)
	return vec, nil
}

// rawWeights computes the L2-normalized TF-IDF weights of the tokens over the
// fitted vocabulary, as parallel (vocabulary index, weight) slices in
// ascending index order. The fixed order keeps floating-point accumulation
// identical across runs, so repeated embeds of the same text are
// bit-for-bit equal.
func (e *Embedder) rawWeights(tokens []string) ([]int, []float64) {
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokens {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return nil, nil
	}
	idxs := make([]int, 0, len(tf))
	for idx := range tf {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	weights := make([]float64, len(idxs))
	norm := 0.0
	for i, idx := range idxs {
		w := float64(tf[idx]) / float64(total) * e.idf[idx]
		weights[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range weights {
			weights[i] /= norm
		}
	}
	return idxs, weights
}

func normalize(vec []float64) {
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
}
