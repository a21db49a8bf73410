// Package chunker splits document text into retrieval-sized chunks.
//
// Segmentation is deterministic and side-effect free: chunk ids are a pure
// function of the document id and the emission ordinal, so re-chunking an
// unchanged document reproduces identical chunks.
package chunker

import (
	"strings"

	"github.com/siftlabs/sift/internal/core/domain"
)

// Default sizing, in tokens as measured by the injected counter.
const (
	// DefaultChunkSize is the target chunk size.
	DefaultChunkSize = 800

	// DefaultOverlap is the overlap budget carried between chunks.
	DefaultOverlap = 100

	// DefaultMaxChunkSize is the hard ceiling: emails, messages and CRM
	// records stay whole only below this bound.
	DefaultMaxChunkSize = 1500
)

// TokenCounter counts tokens in text. Implementations should match the
// tokenizer of the embedding model in use.
type TokenCounter func(text string) int

// Chunker is a content-aware segmentation engine. Strategy is dispatched by
// the document's content type.
type Chunker struct {
	chunkSize    int
	overlap      int
	maxChunkSize int
	countTokens  TokenCounter
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap budget in tokens.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMaxChunkSize sets the hard ceiling in tokens.
func WithMaxChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxChunkSize = size
		}
	}
}

// WithTokenCounter injects the token counting function.
func WithTokenCounter(counter TokenCounter) Option {
	return func(c *Chunker) {
		if counter != nil {
			c.countTokens = counter
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize:    DefaultChunkSize,
		overlap:      DefaultOverlap,
		maxChunkSize: DefaultMaxChunkSize,
		countTokens:  EstimateTokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for new content in each chunk.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
	if c.maxChunkSize < c.chunkSize {
		c.maxChunkSize = c.chunkSize
	}

	return c
}

// Chunk splits a document using the strategy for its content type.
// Empty or whitespace-only content yields zero chunks.
func (c *Chunker) Chunk(doc *domain.Document) []domain.Chunk {
	if strings.TrimSpace(doc.Content) == "" {
		return nil
	}

	var chunks []domain.Chunk
	switch doc.ContentType.Normalise() {
	case domain.ContentTypeEmail, domain.ContentTypeMessage, domain.ContentTypeCRM:
		// Short context-dependent records stay whole when they fit under
		// the ceiling, and are never section-split.
		chunks = c.chunkWhole(doc)
	default:
		chunks = c.chunkStructured(doc)
	}

	for i := range chunks {
		chunks[i].Total = len(chunks)
	}
	return chunks
}

// chunkWhole emits a single chunk when the text fits under the hard ceiling,
// falling back to paragraph splitting with overlap otherwise.
func (c *Chunker) chunkWhole(doc *domain.Document) []domain.Chunk {
	if c.countTokens(doc.Content) <= c.maxChunkSize {
		return []domain.Chunk{c.newChunk(doc, doc.Content, 0, "")}
	}

	texts := c.splitWithOverlap(doc.Content)
	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, c.newChunk(doc, text, i, ""))
	}
	return chunks
}

// chunkStructured segments by headings first, then splits oversized sections
// by paragraph. Every sub-chunk keeps its parent section's title.
func (c *Chunker) chunkStructured(doc *domain.Document) []domain.Chunk {
	sections := splitByHeadings(doc.Content)

	var chunks []domain.Chunk
	for _, section := range sections {
		if c.countTokens(section.Content) <= c.chunkSize {
			chunks = append(chunks, c.newChunk(doc, section.Content, len(chunks), section.Title))
			continue
		}

		for _, text := range c.splitWithOverlap(section.Content) {
			chunks = append(chunks, c.newChunk(doc, text, len(chunks), section.Title))
		}
	}
	return chunks
}

// splitWithOverlap greedily packs whole paragraphs up to the target size.
// When a paragraph would overflow, the current chunk is closed and the next
// one is seeded with whole trailing paragraphs worth at most the overlap
// budget. Paragraphs are never split for overlap purposes.
func (c *Chunker) splitWithOverlap(content string) []string {
	paragraphs := splitParagraphs(content)

	var texts []string
	var current []string
	tokens := 0

	for _, para := range paragraphs {
		paraTokens := c.countTokens(para)

		if tokens+paraTokens <= c.chunkSize {
			current = append(current, para)
			tokens += paraTokens
			continue
		}

		if len(current) > 0 {
			texts = append(texts, strings.Join(current, "\n\n"))
		}

		overlap := c.overlapParagraphs(current)
		current = append(overlap, para)
		tokens = 0
		for _, p := range current {
			tokens += c.countTokens(p)
		}
	}

	if len(current) > 0 {
		texts = append(texts, strings.Join(current, "\n\n"))
	}
	return texts
}

// overlapParagraphs walks backward through a closed chunk's paragraphs,
// taking whole paragraphs while they fit within the overlap budget.
func (c *Chunker) overlapParagraphs(paragraphs []string) []string {
	var overlap []string
	tokens := 0

	for i := len(paragraphs) - 1; i >= 0; i-- {
		paraTokens := c.countTokens(paragraphs[i])
		if tokens+paraTokens > c.overlap {
			break
		}
		overlap = append([]string{paragraphs[i]}, overlap...)
		tokens += paraTokens
	}
	return overlap
}

func (c *Chunker) newChunk(doc *domain.Document, content string, index int, sectionTitle string) domain.Chunk {
	return domain.Chunk{
		ID:           domain.ChunkID(doc.ID, index),
		DocumentID:   doc.ID,
		Content:      strings.TrimSpace(content),
		Index:        index,
		SectionTitle: sectionTitle,
		Metadata:     domain.MetadataFor(doc),
	}
}

// EstimateTokens gives a rough token count from the word count (~1.33 tokens
// per English word). Exact tokenization is injected via WithTokenCounter when
// the embedding model's tokenizer is available.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := int(float64(len(strings.Fields(text))) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
