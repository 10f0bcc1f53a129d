package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"birvalid/internal/config"
	"birvalid/internal/domain"
	"birvalid/internal/port"
)

// Client calls the contract validation service, which checks invoice amounts
// against retrieved contract terms.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a contract validator backed by the RAG service.
func NewClient(cfg *config.RAGConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

var _ port.ContractValidator = (*Client)(nil)

type validateRequest struct {
	InvoiceNumber string `json:"invoice_number"`
}

// ValidateContract submits an invoice number for contract compliance review
// and returns the service's verdict.
func (c *Client) ValidateContract(ctx context.Context, invoiceNumber string) (*domain.RAGValidation, error) {
	body, err := json.Marshal(validateRequest{InvoiceNumber: invoiceNumber})
	if err != nil {
		return nil, fmt.Errorf("rag: marshal request: %w", err)
	}

	url := c.baseURL + "/api/v1/contracts/validate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rag: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rag: validate %s: %w", invoiceNumber, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rag: validate %s: unexpected status %d", invoiceNumber, resp.StatusCode)
	}

	var verdict domain.RAGValidation
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("rag: decode verdict for %s: %w", invoiceNumber, err)
	}
	return &verdict, nil
}
