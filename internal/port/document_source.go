package port

import "context"

// SourceDocument is a stored document with its OCR text, as served by the
// document-management service.
type SourceDocument struct {
	ID      string
	Title   string
	Content string
}

// DocumentSource abstracts the external OCR/document store (Paperless).
// Implementations return domain.ErrDocumentNotFound for unknown ids; callers
// must treat an empty Content as domain.ErrNoOCRContent.
type DocumentSource interface {
	GetDocument(ctx context.Context, id string) (*SourceDocument, error)
}
