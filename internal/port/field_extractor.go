package port

import (
	"context"
	"encoding/json"
)

// FieldExtractor abstracts the LLM extraction call. The returned JSON is
// best-effort and never guaranteed schema-valid; the schema validator gates
// it before any rule runs.
type FieldExtractor interface {
	ExtractInvoiceFields(ctx context.Context, ocrText string) (json.RawMessage, error)
}
