package paperless

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"birvalid/internal/config"
	"birvalid/internal/domain"
	"birvalid/internal/port"
)

// Client fetches OCR'd documents from a Paperless-ngx instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Paperless document source.
func NewClient(cfg *config.PaperlessConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

var _ port.DocumentSource = (*Client)(nil)

type documentResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetDocument fetches a document and its OCR content by ID.
func (c *Client) GetDocument(ctx context.Context, id string) (*port.SourceDocument, error) {
	url := fmt.Sprintf("%s/api/documents/%s/", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("paperless: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paperless: get document %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.ErrDocumentNotFound
	default:
		return nil, fmt.Errorf("paperless: get document %s: unexpected status %d", id, resp.StatusCode)
	}

	var doc documentResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("paperless: decode document %s: %w", id, err)
	}
	return &port.SourceDocument{ID: id, Title: doc.Title, Content: doc.Content}, nil
}
