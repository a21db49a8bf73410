// Package qdrant provides a Qdrant-backed implementation of the vector
// index port, using the REST API over plain HTTP.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "sift_chunks"

// pointNamespace seeds deterministic point ids: Qdrant only accepts UUIDs
// or integers, so chunk ids are hashed into UUIDv5 space.
var pointNamespace = uuid.MustParse("9f2c1b34-5a77-4e10-8c2d-3d1f6b7a8e90")

// Index is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection on Init.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// Config holds Qdrant connection settings.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewIndex creates a Qdrant-backed vector index.
func NewIndex(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection if missing. Qdrant returns 200 when the
// collection already exists with the same schema.
func (x *Index) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", domain.ErrInvalidInput, dimension)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return x.putJSON(ctx, fmt.Sprintf("%s/collections/%s", x.url, x.collection), body)
}

// Upsert writes chunks into the collection, replacing points with the same
// ids.
func (x *Index) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		points[i] = map[string]any{
			"id":     pointID(chunk.ID),
			"vector": chunk.Embedding,
			"payload": map[string]any{
				"chunk_id":      chunk.ID,
				"document_id":   chunk.DocumentID,
				"content":       chunk.Content,
				"chunk_index":   chunk.Index,
				"section_title": chunk.SectionTitle,
				"source":        chunk.Metadata.Source,
				"title":         chunk.Metadata.Title,
				"path":          chunk.Metadata.Path,
				"author":        chunk.Metadata.Author,
				"url":           chunk.Metadata.URL,
				"content_type":  string(chunk.Metadata.ContentType),
				"created_at":    timeField(chunk.Metadata.CreatedAt),
				"modified_at":   timeField(chunk.Metadata.ModifiedAt),
			},
		}
	}

	body := map[string]any{"points": points}
	return x.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", x.url, x.collection), body)
}

// Search returns up to topN chunk hits for the query vector, best first.
func (x *Index) Search(
	ctx context.Context, vector []float32, filter driven.VectorFilter, topN int,
) ([]domain.SearchHit, error) {
	if topN <= 0 {
		topN = 10
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        topN,
		"with_payload": true,
	}
	if len(filter.Sources) > 0 {
		req["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "source", "match": map[string]any{"any": filter.Sources}},
			},
		}
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", x.url, x.collection)
	if err := x.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.SearchHit{
			ChunkID:    payloadString(r.Payload, "chunk_id"),
			DocumentID: payloadString(r.Payload, "document_id"),
			Content:    payloadString(r.Payload, "content"),
			Score:      r.Score,
			Metadata: domain.ChunkMetadata{
				Source:      payloadString(r.Payload, "source"),
				Title:       payloadString(r.Payload, "title"),
				Path:        payloadString(r.Payload, "path"),
				Author:      payloadString(r.Payload, "author"),
				URL:         payloadString(r.Payload, "url"),
				ContentType: domain.ContentType(payloadString(r.Payload, "content_type")),
				CreatedAt:   payloadTime(r.Payload, "created_at"),
				ModifiedAt:  payloadTime(r.Payload, "modified_at"),
			},
		})
	}
	return hits, nil
}

// DeleteByDocument removes every point belonging to a document and returns
// how many were deleted.
func (x *Index) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	docFilter := map[string]any{
		"must": []map[string]any{
			{"key": "document_id", "match": map[string]any{"value": documentID}},
		},
	}

	// The delete API reports no count, so count first.
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	countURL := fmt.Sprintf("%s/collections/%s/points/count", x.url, x.collection)
	if err := x.postJSON(ctx, countURL, map[string]any{"filter": docFilter, "exact": true}, &countResp); err != nil {
		return 0, err
	}
	if countResp.Result.Count == 0 {
		return 0, nil
	}

	deleteURL := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", x.url, x.collection)
	if err := x.postJSON(ctx, deleteURL, map[string]any{"filter": docFilter}, nil); err != nil {
		return 0, err
	}
	return countResp.Result.Count, nil
}

// Close releases resources. The HTTP client holds no persistent state.
func (x *Index) Close() error {
	x.client.CloseIdleConnections()
	return nil
}

// pointID derives a deterministic UUID from a chunk id.
func pointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

func timeField(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func payloadString(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}

func payloadTime(payload map[string]any, key string) time.Time {
	raw, _ := payload[key].(string)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (x *Index) putJSON(ctx context.Context, url string, body any) error {
	return x.doJSON(ctx, http.MethodPut, url, body, nil)
}

func (x *Index) postJSON(ctx context.Context, url string, body any, out any) error {
	return x.doJSON(ctx, http.MethodPost, url, body, out)
}

func (x *Index) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVectorIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: qdrant %s %s", domain.ErrRateLimited, method, url)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
