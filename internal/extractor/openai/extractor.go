package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"birvalid/internal/config"
	"birvalid/internal/port"
)

const extractionPrompt = `You are an invoice data extraction service for Philippine sales invoices.
Extract the following fields from the OCR text and return ONLY a JSON object:
invoice_number, invoice_date, serial_number, vendor_name, vendor_address,
vendor_tin, customer_name, customer_address, customer_tin, subtotal,
vatable_sales, vat_amount, vat_exempt_sales, zero_rated_sales, total_amount,
currency, vat_status (vatable|vat_exempt|zero_rated), vat_classification
(vat_registered|non_vat_registered), exempt_marked (boolean),
signature_present (boolean), bir_atp (boolean), document_control_type
(manual|system), atp_ocn_number, ptu_accn_number, and line_items as an array
of {description, quantity, unit_price, line_total}.
Use null for any field not present. Amounts are plain numbers without
currency symbols or thousands separators.`

// Extractor implements port.FieldExtractor with the OpenAI Chat Completions
// API. Output is best-effort JSON; schema validation happens downstream.
type Extractor struct {
	client *openai.Client
	model  string
}

// NewExtractor creates an OpenAI-backed field extractor.
func NewExtractor(cfg *config.ExtractorConfig) *Extractor {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Extractor{client: openai.NewClientWithConfig(clientCfg), model: model}
}

var _ port.FieldExtractor = (*Extractor)(nil)

// ExtractInvoiceFields sends the OCR text through the extraction prompt and
// returns the raw JSON object from the model.
func (e *Extractor) ExtractInvoiceFields(ctx context.Context, ocrText string) (json.RawMessage, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: ocrText},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai extraction: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai extraction: empty response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = stripCodeFence(content)
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("openai extraction: response is not valid JSON")
	}
	return json.RawMessage(content), nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models still emit
// despite the JSON response format.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
