package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DefaultModel is the embedding model used when none is configured.
	DefaultModel = "text-embedding-3-small"

	// DefaultTimeout bounds a single embedding API call.
	DefaultTimeout = 30 * time.Second
)

// Client is a remote embedding backend behind the same Embedder contract as
// the statistical one. Prepare is a no-op: the model is already trained, so
// the corpus does not shape the vector space.
type Client struct {
	model   string
	timeout time.Duration
	embed   func(ctx context.Context, text string) ([]float64, error)

	mu        sync.Mutex
	dimension int
}

// Config configures the remote embedding client.
type Config struct {
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a remote embedding client, reading the API key from the
// configured environment variable.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{model: cfg.Model, timeout: cfg.Timeout}
	api := openai.NewClient(option.WithAPIKey(key))
	c.embed = func(ctx context.Context, text string) ([]float64, error) {
		resp, err := api.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Model: openai.EmbeddingModel(c.model),
			Input: openai.EmbeddingNewParamsInputUnion{
				OfString: openai.String(text),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return nil, errors.New("no embedding returned")
		}
		return resp.Data[0].Embedding, nil
	}
	return c, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Prepare is not required for remote embedding.
func (c *Client) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced vectors. It is zero
// until the first successful Embed call fixes it.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed returns an embedding vector for the given text. The first successful
// call fixes the dimension under the lock, so concurrent embeds are safe; a
// vector of a different length afterward is a model inconsistency and fails
// loudly.
func (c *Client) Embed(text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	vec, err := c.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dimension == 0 {
		c.dimension = len(vec)
	} else if len(vec) != c.dimension {
		return nil, fmt.Errorf("embedding dimension changed: got %d, want %d", len(vec), c.dimension)
	}
	return vec, nil
}
