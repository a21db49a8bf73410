package domain

// ContentType classifies a document for chunking purposes.
// The set is closed: unknown types fall back to ContentTypeDocument.
type ContentType string

const (
	// ContentTypeDocument is generic structured text (docs, wikis, files).
	ContentTypeDocument ContentType = "document"

	// ContentTypeEmail is a single email message.
	ContentTypeEmail ContentType = "email"

	// ContentTypeMessage is a chat message or thread.
	ContentTypeMessage ContentType = "message"

	// ContentTypeCRM is a CRM record (contact, deal).
	ContentTypeCRM ContentType = "crm"
)

// Valid reports whether the content type is a known member of the set.
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeDocument, ContentTypeEmail, ContentTypeMessage, ContentTypeCRM:
		return true
	}
	return false
}

// Normalise maps unknown or empty content types to the generic document type.
func (c ContentType) Normalise() ContentType {
	if c.Valid() {
		return c
	}
	return ContentTypeDocument
}
