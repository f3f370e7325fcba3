package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLengthMismatch(t *testing.T) {
	_, err := Build([]string{"a", "b"}, [][]float64{{1, 0}})
	require.Error(t, err)
}

func TestBuildDimensionMismatch(t *testing.T) {
	_, err := Build([]string{"a", "b"}, [][]float64{{1, 0}, {1, 0, 0}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSearchQueryDimensionMismatch(t *testing.T) {
	x, err := Build([]string{"a"}, [][]float64{{1, 0}})
	require.NoError(t, err)
	_, err = x.Search([]float64{1, 0, 0}, 1, nil)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSearchOrdersByScore(t *testing.T) {
	x, err := Build(
		[]string{"far", "near", "middle"},
		[][]float64{{0, 1}, {1, 0}, {0.7071, 0.7071}},
	)
	require.NoError(t, err)

	entries, err := x.Search([]float64{1, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "near", entries[0].ID)
	assert.Equal(t, "middle", entries[1].ID)
	assert.Equal(t, "far", entries[2].ID)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	x, err := Build(
		[]string{"first", "other", "second"},
		[][]float64{{1, 0}, {0, 1}, {1, 0}},
	)
	require.NoError(t, err)

	entries, err := x.Search([]float64{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].ID)
	assert.Equal(t, "second", entries[1].ID)
}

func TestSearchTruncatesToTopK(t *testing.T) {
	x, err := Build(
		[]string{"a", "b", "c"},
		[][]float64{{1, 0}, {0.9, 0.1}, {0, 1}},
	)
	require.NoError(t, err)

	entries, err := x.Search([]float64{1, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)
}

func TestSearchAppliesAllowedFilter(t *testing.T) {
	x, err := Build(
		[]string{"best", "allowed"},
		[][]float64{{1, 0}, {0, 1}},
	)
	require.NoError(t, err)

	entries, err := x.Search([]float64{1, 0}, 2, func(id string) bool { return id == "allowed" })
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "allowed", entries[0].ID)
}

func TestSearchEmptyIndex(t *testing.T) {
	x, err := Build(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, x.Len())

	entries, err := x.Search([]float64{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildCopiesInputs(t *testing.T) {
	ids := []string{"a"}
	vectors := [][]float64{{1, 0}}
	x, err := Build(ids, vectors)
	require.NoError(t, err)

	vectors[0][0] = -1
	entries, err := x.Search([]float64{1, 0}, 1, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, entries[0].Score, 1e-12)
}
