package tfidf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedwig/internal/embedding"
)

var corpus = []string{
	"dj club night set booking electronic music opening slot",
	"band venue concert touring gig live music draw tickets",
	"software demo sales pipeline prospect b2b-focused trial",
}

func prepared(t *testing.T, components int) *Embedder {
	t.Helper()
	e := NewEmbedder(components)
	require.NoError(t, e.Prepare(corpus))
	return e
}

func TestEmbedBeforePrepare(t *testing.T) {
	e := NewEmbedder(0)
	_, err := e.Embed("anything")
	require.ErrorIs(t, err, embedding.ErrNotPrepared)
}

func TestPrepareEmptyCorpus(t *testing.T) {
	e := NewEmbedder(0)
	require.ErrorIs(t, e.Prepare(nil), ErrEmptyCorpus)
}

func TestDimensionBoundedByCorpus(t *testing.T) {
	// Three documents cap the reduced space at three components even though
	// the configured target is far larger.
	e := prepared(t, 128)
	assert.Equal(t, 3, e.Dimension())

	e = prepared(t, 2)
	assert.Equal(t, 2, e.Dimension())
}

func TestEmbedVectorShape(t *testing.T) {
	e := prepared(t, 128)
	vec, err := e.Embed(corpus[0])
	require.NoError(t, err)
	assert.Len(t, vec, e.Dimension())

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9, "embedding should be L2-normalized")
}

func TestOutOfVocabularyYieldsZeroVector(t *testing.T) {
	e := prepared(t, 128)
	vec, err := e.Embed("zzz qqq completely unseen terms")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	a := prepared(t, 128)
	b := prepared(t, 128)

	for _, text := range append(corpus, "dj looking for a club night") {
		va, err := a.Embed(text)
		require.NoError(t, err)
		vb, err := b.Embed(text)
		require.NoError(t, err)
		assert.Equal(t, va, vb, "independent fits must embed %q identically", text)
	}
}

func TestSelfSimilarity(t *testing.T) {
	e := prepared(t, 128)
	for i, doc := range corpus {
		self, err := e.Embed(doc)
		require.NoError(t, err)
		for j, other := range corpus {
			vec, err := e.Embed(other)
			require.NoError(t, err)
			score := dot(self, vec)
			if i == j {
				assert.InDelta(t, 1.0, score, 1e-9)
			} else {
				assert.Less(t, score, 0.99)
			}
		}
	}
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
