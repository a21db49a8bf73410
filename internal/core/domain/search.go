package domain

import "time"

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results (default 10).
	Limit int

	// Sources filters results to specific source names.
	Sources []string
}

// SearchHit is a raw chunk-level match returned by the vector index.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the owning document.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Score is the similarity score in [0,1].
	Score float64

	// Metadata is the chunk's stored payload.
	Metadata ChunkMetadata
}

// SearchResult is the document-level aggregate of one or more hits:
// the best-scoring chunk of a document plus document metadata.
// Results are ephemeral, recomputed per query.
type SearchResult struct {
	DocumentID string
	Title      string
	Source     string
	Path       string
	Author     string
	URL        string

	// Snippet is a readable excerpt from the best-scoring chunk.
	Snippet string

	// Score is the best chunk's similarity score.
	Score float64

	// ModifiedAt is the document's source-reported modification time.
	ModifiedAt time.Time

	// ChunkCount is how many of the document's chunks matched.
	ChunkCount int
}

// SearchResponse is the full answer to one query.
type SearchResponse struct {
	// Query is the caller's original query text.
	Query string

	// Results is the ranked, deduplicated result list.
	Results []SearchResult

	// TotalFound counts results above the similarity floor, before the
	// limit truncation.
	TotalFound int

	// SearchTimeMs is elapsed wall-clock time in milliseconds.
	SearchTimeMs float64
}
