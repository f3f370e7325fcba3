package embedding

import "errors"

// ErrNotPrepared is returned when Embed is called before Prepare.
var ErrNotPrepared = errors.New("embedder not prepared: call Prepare with the corpus first")

// Embedder converts free text into a fixed-length numeric vector.
// Implementations may require a preparation phase over the corpus; Prepare is
// called exactly once at corpus load and the embedder is read-only afterward.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}
