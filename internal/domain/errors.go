package domain

import "errors"

var (
	ErrNotFound              = errors.New("resource not found")
	ErrInvoiceNotFound       = errors.New("invoice not found")
	ErrInvoiceExists         = errors.New("invoice already registered for this document")
	ErrRuleSetNotFound       = errors.New("rule set not found")
	ErrRuleSetExists         = errors.New("rule set already exists")
	ErrInvalidRuleSet        = errors.New("rule set spec is invalid")
	ErrValidationLocked      = errors.New("validation already succeeded for this invoice")
	ErrDocumentNotFound      = errors.New("source document not found")
	ErrNoOCRContent          = errors.New("source document has no OCR content")
	ErrExtractionFailed      = errors.New("field extraction failed")
	ErrBatchTooLarge         = errors.New("batch exceeds the maximum document count")
	ErrEmptyBatch            = errors.New("batch contains no document ids")
	ErrInvalidStructuredData = errors.New("record does not match expected invoice schema")
)
