package retriever

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"hedwig/internal/domain"
	"hedwig/internal/embedding"
	"hedwig/internal/index"
	"hedwig/internal/scrolls"
	"hedwig/internal/textnorm"
)

// ErrNotReady is returned when retrieval is attempted before the corpus has
// been loaded, fitted and indexed. It is fatal to the call, not the process;
// callers treat it as "no template available yet".
var ErrNotReady = errors.New("retrieval engine not initialized")

// DefaultMinSimilarity is the acceptance threshold: a best match scoring
// below it is discarded rather than injected into the prompt, because
// fabricated style guidance is worse than none.
const DefaultMinSimilarity = 0.75

// Config tunes the engine.
type Config struct {
	ScrollsDir    string
	MinSimilarity float64 // <= 0 selects DefaultMinSimilarity
	MaxScrolls    int
}

// Engine answers "given this conversation context and optional filters,
// which scroll matches best?". It has two lifecycle states: Uninitialized
// (before Init completes) and Ready. All loaded state lives in an immutable
// snapshot behind an atomic pointer, so Reload swaps in a freshly built
// corpus without in-flight retrievals ever observing a torn index.
type Engine struct {
	cfg         Config
	newEmbedder func() embedding.Embedder
	log         *slog.Logger
	snap        atomic.Pointer[snapshot]
}

// snapshot is one fully built corpus: scrolls, a fitted embedder and the
// similarity index over the scrolls' matching text.
type snapshot struct {
	scrolls  []domain.Scroll
	byID     map[string]*domain.Scroll
	embedder embedding.Embedder
	index    *index.Index
	warnings []scrolls.LoadWarning
}

// New creates an uninitialized engine. newEmbedder is invoked per corpus
// build so a reload fits a fresh basis instead of mutating one shared with
// in-flight queries.
func New(cfg Config, newEmbedder func() embedding.Embedder, log *slog.Logger) *Engine {
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = DefaultMinSimilarity
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{cfg: cfg, newEmbedder: newEmbedder, log: log}
}

// Init loads the corpus, fits the embedder and builds the index. It runs
// once, synchronously, before the engine accepts queries; this is the sole
// startup-latency cost.
func (e *Engine) Init() error {
	return e.Reload()
}

// Reload builds a brand-new snapshot off to the side and atomically swaps it
// in. Concurrent retrievals keep using the previous snapshot until the swap.
func (e *Engine) Reload() error {
	snap, err := e.build()
	if err != nil {
		return err
	}
	e.snap.Store(snap)
	return nil
}

// Ready reports whether the engine has a built corpus.
func (e *Engine) Ready() bool { return e.snap.Load() != nil }

// Warnings returns the per-document load warnings of the active corpus.
func (e *Engine) Warnings() []scrolls.LoadWarning {
	if s := e.snap.Load(); s != nil {
		return s.warnings
	}
	return nil
}

// Len returns the number of scrolls in the active corpus.
func (e *Engine) Len() int {
	if s := e.snap.Load(); s != nil {
		return len(s.scrolls)
	}
	return 0
}

// Get returns the scroll with the given id from the active corpus.
func (e *Engine) Get(id string) (domain.Scroll, bool) {
	s := e.snap.Load()
	if s == nil {
		return domain.Scroll{}, false
	}
	scroll, ok := s.byID[id]
	if !ok {
		return domain.Scroll{}, false
	}
	return *scroll, true
}

// Retrieve finds the single best-matching scroll for the query text among
// candidates that satisfy the filters. A best score below the acceptance
// threshold yields an empty result, not an error: the caller proceeds
// without style guidance. Safe for concurrent use once Ready.
func (e *Engine) Retrieve(query string, filters domain.Filters) (domain.Result, error) {
	s := e.snap.Load()
	if s == nil {
		return domain.Result{}, ErrNotReady
	}
	if s.index.Len() == 0 {
		return domain.Result{}, nil
	}

	vec, err := s.embedder.Embed(textnorm.Normalize(query))
	if err != nil {
		return domain.Result{}, fmt.Errorf("embedding query: %w", err)
	}

	var allowed func(id string) bool
	if !filters.Empty() {
		allowed = func(id string) bool {
			scroll, ok := s.byID[id]
			return ok && filters.Matches(scroll.Metadata)
		}
	}
	entries, err := s.index.Search(vec, 1, allowed)
	if err != nil {
		return domain.Result{}, err
	}
	if len(entries) == 0 {
		e.log.Debug("no retrieval candidates after filtering", "filters", filters)
		return domain.Result{}, nil
	}

	best := entries[0]
	if best.Score < e.cfg.MinSimilarity {
		e.log.Info("best scroll below acceptance threshold",
			"scroll", best.ID, "score", best.Score, "threshold", e.cfg.MinSimilarity)
		return domain.Result{Score: best.Score}, nil
	}
	scroll := *s.byID[best.ID]
	e.log.Info("scroll retrieved", "scroll", scroll.ID, "score", best.Score,
		"use_case", scroll.Metadata.UseCase, "industry", scroll.Metadata.Industry)
	return domain.Result{Scroll: &scroll, Score: best.Score, Accepted: true}, nil
}

// Stats summarizes the active corpus by use case, tone and industry.
type Stats struct {
	Scrolls    int
	UseCases   map[string]int
	Tones      map[string]int
	Industries map[string]int
}

// Stats returns counts over the active corpus.
func (e *Engine) Stats() Stats {
	st := Stats{
		UseCases:   map[string]int{},
		Tones:      map[string]int{},
		Industries: map[string]int{},
	}
	s := e.snap.Load()
	if s == nil {
		return st
	}
	st.Scrolls = len(s.scrolls)
	for _, scroll := range s.scrolls {
		st.UseCases[scroll.Metadata.UseCase]++
		st.Tones[scroll.Metadata.Tone]++
		st.Industries[scroll.Metadata.Industry]++
	}
	return st
}

func (e *Engine) build() (*snapshot, error) {
	loader := scrolls.NewLoader(e.cfg.ScrollsDir, e.cfg.MaxScrolls, e.log)
	loaded, warnings, err := loader.Load()
	if err != nil {
		return nil, err
	}

	snap := &snapshot{
		scrolls:  loaded,
		byID:     make(map[string]*domain.Scroll, len(loaded)),
		embedder: e.newEmbedder(),
		warnings: warnings,
	}
	for i := range loaded {
		snap.byID[loaded[i].ID] = &loaded[i]
	}

	// An empty corpus still reaches Ready: retrieval over zero documents is
	// an empty result, not a failure.
	if len(loaded) == 0 {
		snap.index, err = index.Build(nil, nil)
		if err != nil {
			return nil, err
		}
		return snap, nil
	}

	corpus := make([]string, len(loaded))
	for i, scroll := range loaded {
		corpus[i] = textnorm.Normalize(scroll.MatchingText())
	}
	if err := snap.embedder.Prepare(corpus); err != nil {
		return nil, fmt.Errorf("fitting embedder: %w", err)
	}

	ids := make([]string, len(loaded))
	vectors := make([][]float64, len(loaded))
	for i, scroll := range loaded {
		ids[i] = scroll.ID
		vec, err := snap.embedder.Embed(corpus[i])
		if err != nil {
			return nil, fmt.Errorf("embedding scroll %s: %w", scroll.ID, err)
		}
		vectors[i] = vec
	}
	snap.index, err = index.Build(ids, vectors)
	if err != nil {
		return nil, err
	}
	e.log.Info("retrieval index built", "scrolls", len(loaded),
		"dimension", snap.index.Dimension(), "embedder", snap.embedder.Name())
	return snap, nil
}
