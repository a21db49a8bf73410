package services

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/ports/driven"
	"github.com/siftlabs/sift/internal/core/ports/driving"
	"github.com/siftlabs/sift/internal/embedding"
	"github.com/siftlabs/sift/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Retrieval defaults.
const (
	// DefaultSearchLimit caps results when the caller passes none.
	DefaultSearchLimit = 10

	// DefaultSimilarityThreshold is the similarity floor below which
	// results are dropped.
	DefaultSimilarityThreshold = 0.3

	// overFetchFactor over-requests raw chunk hits to leave room for
	// per-document deduplication.
	overFetchFactor = 3

	// snippetLength bounds result snippets in characters.
	snippetLength = 300
)

// abbreviations expands common shorthand in queries. A quality heuristic,
// not a correctness requirement.
var abbreviations = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bdocs\b`), "documents"},
	{regexp.MustCompile(`(?i)\bdoc\b`), "document"},
	{regexp.MustCompile(`(?i)\binfo\b`), "information"},
	{regexp.MustCompile(`(?i)\bmtg\b`), "meeting"},
	{regexp.MustCompile(`(?i)\bpls\b`), "please"},
	{regexp.MustCompile(`(?i)\basap\b`), "as soon as possible"},
	{regexp.MustCompile(`(?i)\bfyi\b`), "for your information"},
	{regexp.MustCompile(`(?i)\bwrt\b`), "with respect to"},
	{regexp.MustCompile(`(?i)\bre\b`), "regarding"},
}

// SearchService turns one query into a ranked, deduplicated list of
// document-level results.
type SearchService struct {
	embedder    *embedding.Batcher
	vectorIndex driven.VectorIndex
	threshold   float64
}

// SearchOption configures the search service.
type SearchOption func(*SearchService)

// WithSimilarityThreshold sets the similarity floor.
func WithSimilarityThreshold(threshold float64) SearchOption {
	return func(s *SearchService) {
		if threshold >= 0 && threshold <= 1 {
			s.threshold = threshold
		}
	}
}

// NewSearchService creates a search service.
func NewSearchService(embedder *embedding.Batcher, vectorIndex driven.VectorIndex, opts ...SearchOption) *SearchService {
	s := &SearchService{
		embedder:    embedder,
		vectorIndex: vectorIndex,
		threshold:   DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search embeds the query, over-fetches raw chunk hits, groups them by
// document keeping the best chunk per document, applies the similarity
// floor, sorts by score and truncates to the limit.
//
// Embedding failure degrades to an empty response: search never propagates
// provider errors to the caller.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	logger.Section("Search Execution")
	started := time.Now()

	response := &domain.SearchResponse{Query: query, Results: []domain.SearchResult{}}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	processed := preprocessQuery(query)
	if processed == "" {
		logger.Debug("Empty query, returning no results")
		response.SearchTimeMs = elapsedMs(started)
		return response, nil
	}
	logger.Debug("Query preprocessed: %q -> %q", query, processed)

	vector, err := s.embedder.Embed(ctx, processed)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		response.SearchTimeMs = elapsedMs(started)
		return response, nil
	}

	filter := driven.VectorFilter{Sources: opts.Sources}
	hits, err := s.vectorIndex.Search(ctx, vector, filter, limit*overFetchFactor)
	if err != nil {
		logger.Warn("Vector search failed: %v", err)
		response.SearchTimeMs = elapsedMs(started)
		return response, nil
	}
	logger.Debug("Raw hits: %d", len(hits))

	grouped := groupByDocument(hits)

	filtered := grouped[:0]
	for _, result := range grouped {
		if result.Score >= s.threshold {
			filtered = append(filtered, result)
		}
	}

	response.TotalFound = len(filtered)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	response.Results = filtered
	response.SearchTimeMs = elapsedMs(started)

	logger.Info("Search complete: %d results (%d above threshold) in %.1fms",
		len(response.Results), response.TotalFound, response.SearchTimeMs)
	return response, nil
}

// groupByDocument partitions raw hits by document, keeping the single
// best-scoring chunk per document. Equal scores keep first-seen order, so a
// document never appears twice and ties are stable.
func groupByDocument(hits []domain.SearchHit) []domain.SearchResult {
	type group struct {
		best  domain.SearchHit
		count int
	}

	groups := make(map[string]*group)
	order := make([]string, 0, len(hits))

	for _, hit := range hits {
		g, ok := groups[hit.DocumentID]
		if !ok {
			groups[hit.DocumentID] = &group{best: hit, count: 1}
			order = append(order, hit.DocumentID)
			continue
		}
		g.count++
		if hit.Score > g.best.Score {
			g.best = hit
		}
	}

	results := make([]domain.SearchResult, 0, len(order))
	for _, docID := range order {
		g := groups[docID]
		results = append(results, domain.SearchResult{
			DocumentID: docID,
			Title:      g.best.Metadata.Title,
			Source:     g.best.Metadata.Source,
			Path:       g.best.Metadata.Path,
			Author:     g.best.Metadata.Author,
			URL:        g.best.Metadata.URL,
			Snippet:    extractSnippet(g.best.Content, snippetLength),
			Score:      g.best.Score,
			ModifiedAt: g.best.Metadata.ModifiedAt,
			ChunkCount: g.count,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// preprocessQuery collapses whitespace and expands common abbreviations.
func preprocessQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	for _, abbr := range abbreviations {
		query = abbr.pattern.ReplaceAllString(query, abbr.replacement)
	}
	return strings.TrimSpace(query)
}

// extractSnippet trims chunk content to a readable excerpt, preferring
// sentence boundaries, then word boundaries.
func extractSnippet(content string, maxLength int) string {
	if len(content) <= maxLength {
		return content
	}

	// Back up so the cut never lands inside a multi-byte rune.
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	truncated := content[:cut]
	breakPoint := strings.LastIndexAny(truncated, ".\n")
	if breakPoint > maxLength/2 {
		return strings.TrimSpace(truncated[:breakPoint+1])
	}

	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		return strings.TrimSpace(truncated[:lastSpace]) + "..."
	}
	return truncated + "..."
}

func elapsedMs(started time.Time) float64 {
	return float64(time.Since(started).Microseconds()) / 1000.0
}
