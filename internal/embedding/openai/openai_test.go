package openai

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(embed func(ctx context.Context, text string) ([]float64, error)) *Client {
	return &Client{model: DefaultModel, timeout: time.Second, embed: embed}
}

func TestEmbedFixesDimensionOnFirstCall(t *testing.T) {
	c := testClient(func(_ context.Context, _ string) ([]float64, error) {
		return []float64{0.1, 0.2, 0.3}, nil
	})
	assert.Zero(t, c.Dimension())

	vec, err := c.Embed("hello")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
	assert.Equal(t, 3, c.Dimension())
}

func TestEmbedRejectsDimensionChange(t *testing.T) {
	vecs := [][]float64{{0.1, 0.2, 0.3}, {0.1, 0.2}}
	call := 0
	c := testClient(func(_ context.Context, _ string) ([]float64, error) {
		v := vecs[call]
		call++
		return v, nil
	})

	_, err := c.Embed("first")
	require.NoError(t, err)
	_, err = c.Embed("second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension changed")
	assert.Equal(t, 3, c.Dimension())
}

func TestEmbedConcurrentCalls(t *testing.T) {
	c := testClient(func(_ context.Context, _ string) ([]float64, error) {
		return []float64{1, 0, 0, 0}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vec, err := c.Embed("text")
			assert.NoError(t, err)
			assert.Len(t, vec, 4)
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, c.Dimension())
}
