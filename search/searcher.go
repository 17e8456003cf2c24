package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/pagefind/ai"
	"github.com/poiesic/pagefind/core"
	"github.com/poiesic/pagefind/match"
)

// Default ranking parameters.
const (
	DefaultRelevanceFloor = 0.10
	DefaultContextChars   = 100
	DefaultPreviewChars   = 200
	DefaultMaxResults     = 10

	// exactScoreScale turns matches per character into a readable score.
	exactScoreScale = 1000

	// NoTextMessage is reported when a document has no pages to search.
	NoTextMessage = "No text found in document"
)

// Searcher ranks the pages of a single document against a query.
type Searcher struct {
	embedder       ai.Embedder
	relevanceFloor float64
	contextChars   int
	previewChars   int
	maxResults     int
	monitor        SearchMonitor
	logger         *slog.Logger
}

// SearchOptions adjusts a single search.
type SearchOptions struct {
	// ExactOnly skips embeddings and ranks by exact matches alone.
	ExactOnly bool

	// Monitor observes this search. Overrides the searcher's monitor.
	Monitor SearchMonitor
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRelevanceFloor sets the similarity a page must exceed to be kept in
// hybrid mode. Default is DefaultRelevanceFloor.
func WithRelevanceFloor(floor float64) Option {
	return func(s *Searcher) error {
		if floor < -1 || floor > 1 {
			return fmt.Errorf("relevance floor must be between -1 and 1, got %f", floor)
		}
		s.relevanceFloor = floor
		return nil
	}
}

// WithContextChars sets how many characters surround a match in a snippet.
func WithContextChars(n int) Option {
	return func(s *Searcher) error {
		if n < 0 {
			return fmt.Errorf("context chars must be non-negative, got %d", n)
		}
		s.contextChars = n
		return nil
	}
}

// WithPreviewChars sets the snippet length for pages without a match.
func WithPreviewChars(n int) Option {
	return func(s *Searcher) error {
		if n < 1 {
			return fmt.Errorf("preview chars must be positive, got %d", n)
		}
		s.previewChars = n
		return nil
	}
}

// WithMaxResults caps the number of results returned.
func WithMaxResults(n int) Option {
	return func(s *Searcher) error {
		if n < 1 {
			return fmt.Errorf("max results must be positive, got %d", n)
		}
		s.maxResults = n
		return nil
	}
}

// WithMonitor sets the default monitor for every search.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		s.monitor = monitor
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		embedder:       embedder,
		relevanceFloor: DefaultRelevanceFloor,
		contextChars:   DefaultContextChars,
		previewChars:   DefaultPreviewChars,
		maxResults:     DefaultMaxResults,
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "search")

	return s, nil
}

// pageScan is the exact-match outcome for one page.
type pageScan struct {
	page  core.Page
	runes []rune
	spans []core.ExactMatchSpan
}

// Search ranks pages against query.
//
// Embedding failures never fail a search: the searcher logs them and ranks
// by exact matches instead. The only errors returned come from ctx.
func (s *Searcher) Search(ctx context.Context, pages []core.Page, query string, opts SearchOptions) (*core.ResultSet, error) {
	monitor := opts.Monitor
	if monitor == nil {
		monitor = s.monitor
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	pages = searchable(pages)
	monitor.Start(query, len(pages))

	if len(pages) == 0 {
		rs := &core.ResultSet{
			Results:    []core.SearchResult{},
			TotalPages: 0,
			Query:      query,
			Message:    NoTextMessage,
		}
		monitor.Finish(rs)
		return rs, nil
	}

	exactOnly := opts.ExactOnly || core.IsBlank(query)
	var (
		scans    []pageScan
		vectors  [][]float32
		embedErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	if !exactOnly {
		g.Go(func() error {
			vectors, embedErr = s.embed(gctx, pages, query)
			return nil
		})
	}
	g.Go(func() error {
		var err error
		scans, err = s.scan(gctx, pages, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[int]int, len(scans))
	for _, sc := range scans {
		counts[sc.page.Number] = len(sc.spans)
	}

	var rs *core.ResultSet
	switch {
	case opts.ExactOnly:
		monitor.ModeSelected(core.SearchTypeExactMatch, "requested")
		monitor.AfterExactScan(counts)
		rs = s.rankExact(scans)
	case core.IsBlank(query):
		monitor.ModeSelected(core.SearchTypeExactMatch, "blank query")
		monitor.AfterExactScan(counts)
		rs = s.rankExact(scans)
	case embedErr != nil:
		s.logger.Warn("embeddings unavailable, ranking by exact matches", "err", embedErr)
		monitor.ModeSelected(core.SearchTypeExactMatch, embedErr.Error())
		monitor.AfterExactScan(counts)
		rs = s.rankExact(scans)
	default:
		monitor.ModeSelected(core.SearchTypeHybrid, "embeddings available")
		monitor.AfterEmbedding(len(vectors), len(vectors[0]))
		rs = s.rankHybrid(scans, vectors, monitor, counts)
	}

	rs.TotalPages = len(pages)
	rs.Query = query
	s.logger.Debug("search complete",
		"query", query,
		"mode", rs.SearchType,
		"pages", rs.TotalPages,
		"results", len(rs.Results))
	monitor.Finish(rs)
	return rs, nil
}

// searchable drops blank pages and orders the rest by page number.
func searchable(pages []core.Page) []core.Page {
	out := make([]core.Page, 0, len(pages))
	for _, p := range pages {
		if !core.IsBlank(p.Text) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b core.Page) int { return a.Number - b.Number })
	return out
}

// embed requests page vectors plus the query vector (last) in one call.
func (s *Searcher) embed(ctx context.Context, pages []core.Page, query string) ([][]float32, error) {
	texts := make([]string, 0, len(pages)+1)
	for _, p := range pages {
		texts = append(texts, p.Text)
	}
	texts = append(texts, query)

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		if errors.Is(err, core.ErrEmbeddingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrEmbeddingUnavailable, err)
	}
	if err := ai.CheckVectors(vectors, len(texts)); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEmbeddingUnavailable, err)
	}
	return vectors, nil
}

func (s *Searcher) scan(ctx context.Context, pages []core.Page, query string) ([]pageScan, error) {
	pattern := match.Compile(query)
	scans := make([]pageScan, len(pages))
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scans[i] = pageScan{
			page:  p,
			runes: []rune(p.Text),
			spans: pattern.FindAll(p.Text),
		}
	}
	return scans, nil
}

func (s *Searcher) rankHybrid(scans []pageScan, vectors [][]float32, monitor SearchMonitor, counts map[int]int) *core.ResultSet {
	queryVec := vectors[len(vectors)-1]
	similarities := make(map[int]float64, len(scans))
	kept := make([]int, 0, len(scans))
	results := make([]core.SearchResult, 0, len(scans))

	for i, sc := range scans {
		sim := cosineSimilarity(queryVec, vectors[i])
		similarities[sc.page.Number] = sim
		if sim <= s.relevanceFloor {
			continue
		}
		kept = append(kept, sc.page.Number)
		results = append(results, s.result(sc, sim))
	}
	monitor.AfterRelevanceFilter(similarities, kept)
	monitor.AfterExactScan(counts)

	slices.SortStableFunc(results, func(a, b core.SearchResult) int {
		if a.HasExactMatch != b.HasExactMatch {
			if a.HasExactMatch {
				return -1
			}
			return 1
		}
		return compareDesc(a.Score, b.Score)
	})

	return &core.ResultSet{
		Results:    truncate(results, s.maxResults),
		SearchType: core.SearchTypeHybrid,
	}
}

func (s *Searcher) rankExact(scans []pageScan) *core.ResultSet {
	results := make([]core.SearchResult, 0, len(scans))
	for _, sc := range scans {
		if len(sc.spans) == 0 {
			continue
		}
		score := float64(len(sc.spans)) / float64(len(sc.runes)) * exactScoreScale
		results = append(results, s.result(sc, score))
	}

	slices.SortStableFunc(results, func(a, b core.SearchResult) int {
		if a.MatchCount != b.MatchCount {
			return b.MatchCount - a.MatchCount
		}
		return compareDesc(a.Score, b.Score)
	})

	return &core.ResultSet{
		Results:    truncate(results, s.maxResults),
		SearchType: core.SearchTypeExactMatch,
	}
}

func (s *Searcher) result(sc pageScan, score float64) core.SearchResult {
	spans := sc.spans
	if spans == nil {
		spans = []core.ExactMatchSpan{}
	}
	return core.SearchResult{
		Page:          sc.page.Number,
		Snippet:       snippetFor(sc.runes, spans, s.contextChars, s.previewChars),
		Score:         score,
		FullText:      sc.page.Text,
		HasExactMatch: len(spans) > 0,
		MatchCount:    len(spans),
		ExactMatches:  spans,
	}
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func truncate(results []core.SearchResult, n int) []core.SearchResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}
