// Package memory provides an in-memory implementation of the vector index
// port with exact cosine similarity. Used in tests and for small corpora.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory vector index with brute-force cosine search.
type Index struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk

	// byDocument maps document id to its chunk ids.
	byDocument map[string]map[string]struct{}
}

// NewIndex creates an empty in-memory vector index.
func NewIndex() *Index {
	return &Index{
		chunks:     make(map[string]domain.Chunk),
		byDocument: make(map[string]map[string]struct{}),
	}
}

// Upsert writes chunks, replacing entries with the same chunk ids.
func (x *Index) Upsert(_ context.Context, chunks []domain.Chunk) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, chunk := range chunks {
		x.chunks[chunk.ID] = chunk
		ids, ok := x.byDocument[chunk.DocumentID]
		if !ok {
			ids = make(map[string]struct{})
			x.byDocument[chunk.DocumentID] = ids
		}
		ids[chunk.ID] = struct{}{}
	}
	return nil
}

// Search returns up to topN hits for the query vector, best score first.
func (x *Index) Search(
	_ context.Context, vector []float32, filter driven.VectorFilter, topN int,
) ([]domain.SearchHit, error) {
	if topN <= 0 {
		topN = 10
	}

	allowed := make(map[string]struct{}, len(filter.Sources))
	for _, source := range filter.Sources {
		allowed[source] = struct{}{}
	}

	x.mu.RLock()
	hits := make([]domain.SearchHit, 0, len(x.chunks))
	for _, chunk := range x.chunks {
		if len(allowed) > 0 {
			if _, ok := allowed[chunk.Metadata.Source]; !ok {
				continue
			}
		}
		hits = append(hits, domain.SearchHit{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			Content:    chunk.Content,
			Score:      cosineSimilarity(vector, chunk.Embedding),
			Metadata:   chunk.Metadata,
		})
	}
	x.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topN {
		hits = hits[:topN]
	}
	return hits, nil
}

// DeleteByDocument removes every chunk belonging to a document.
func (x *Index) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	ids, ok := x.byDocument[documentID]
	if !ok {
		return 0, nil
	}
	for id := range ids {
		delete(x.chunks, id)
	}
	delete(x.byDocument, documentID)
	return len(ids), nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// Len reports how many chunks are indexed.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks)
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-magnitude vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
