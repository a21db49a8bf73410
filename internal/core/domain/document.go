package domain

import (
	"fmt"
	"time"
)

// Document is the canonical representation of one item pulled from a source.
// Its identity is the composite of the source name and the source-native id,
// so re-syncing an unchanged item always yields the same document id.
type Document struct {
	// ID is the globally unique identifier, "<source>:<sourceID>".
	ID string

	// Source names the provider this document came from (e.g. "gdrive").
	Source string

	// SourceID is the provider-native identifier.
	SourceID string

	// Title is the human-readable title.
	Title string

	// Path is an optional human-readable location (folder, label).
	Path string

	// Author is the optional document owner or sender.
	Author string

	// ContentType selects the chunking strategy.
	ContentType ContentType

	// Content is the extracted text.
	Content string

	// URL is an optional link back to the item in its source.
	URL string

	// CreatedAt and ModifiedAt are source-reported timestamps; zero when unknown.
	CreatedAt  time.Time
	ModifiedAt time.Time

	// LastSynced is when this document was last written by a sync run.
	LastSynced time.Time
}

// DocumentID builds the composite document id for a source-native item id.
func DocumentID(source, sourceID string) string {
	return fmt.Sprintf("%s:%s", source, sourceID)
}

// Chunk is a bounded slice of a document's text, the unit of embedding
// and retrieval.
type Chunk struct {
	// ID is deterministic: "chunk_<documentID>_<index>". Re-chunking an
	// unchanged document reproduces the same ids.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Content is the trimmed chunk text.
	Content string

	// Index is the ordinal position within the document, 0-based.
	Index int

	// Total is the number of chunks emitted for the document.
	Total int

	// SectionTitle is the heading the chunk was emitted under, if any.
	SectionTitle string

	// Embedding is the vector representation, populated before upsert.
	Embedding []float32

	// Metadata carries document-level fields into the vector index payload.
	Metadata ChunkMetadata
}

// ChunkID builds the deterministic chunk id for a document ordinal.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("chunk_%s_%d", documentID, index)
}

// ChunkMetadata mirrors the owning document's fields so search hits can be
// rendered without a storage round trip.
type ChunkMetadata struct {
	Source      string
	Title       string
	Path        string
	Author      string
	URL         string
	ContentType ContentType
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// MetadataFor derives chunk metadata from a document.
func MetadataFor(doc *Document) ChunkMetadata {
	return ChunkMetadata{
		Source:      doc.Source,
		Title:       doc.Title,
		Path:        doc.Path,
		Author:      doc.Author,
		URL:         doc.URL,
		ContentType: doc.ContentType,
		CreatedAt:   doc.CreatedAt,
		ModifiedAt:  doc.ModifiedAt,
	}
}
