// internal/clients/contentstore.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/javajoker/storesync/internal/config"
)

// StoredDocument is a document handle returned by the content store: the
// store's own ID plus the raw document body for callers that need the
// currently stored fields (variant lists, tag sets).
type StoredDocument struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// ContentStoreClient performs the four single-round-trip operations the
// sync engine needs: exact-match query, create, patch, delete. Patch is
// set-fields, not replace-document; that semantic belongs to the store's
// API and the engine relies on it.
type ContentStoreClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

func NewContentStoreClient(cfg config.ContentStoreConfig, timeout time.Duration) *ContentStoreClient {
	return &ContentStoreClient{
		baseURL:    cfg.BaseURL,
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FindByField returns the first document in the collection whose field
// exactly matches value, or (nil, nil) when none matches. A transport or
// server failure is returned as an error and must never be conflated with
// not-found: a retryable read error that looked like "no document" would
// turn into a duplicate create.
func (c *ContentStoreClient) FindByField(ctx context.Context, collection, field, value string) (*StoredDocument, error) {
	query := url.Values{}
	query.Set("field", field)
	query.Set("value", value)
	query.Set("limit", "1")

	endpoint := fmt.Sprintf("%s/api/collections/%s/documents?%s", c.baseURL, url.PathEscape(collection), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build content-store query: %w", err)
	}

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Documents []StoredDocument `json:"documents"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("content-store query response: %w", err)
	}
	if len(envelope.Documents) == 0 {
		return nil, nil
	}
	return &envelope.Documents[0], nil
}

// Create inserts a new document and returns its handle. A store-side
// uniqueness rejection surfaces as ErrDuplicate so the orchestrator can run
// its recovery path.
func (c *ContentStoreClient) Create(ctx context.Context, collection string, doc interface{}) (*StoredDocument, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/collections/%s/documents", c.baseURL, url.PathEscape(collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build content-store create: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	var created StoredDocument
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("content-store create response: %w", err)
	}
	return &created, nil
}

// Patch sets the given fields on an existing document. Fields absent from
// doc are left untouched in storage.
func (c *ContentStoreClient) Patch(ctx context.Context, collection, id string, doc interface{}) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/collections/%s/documents/%s", c.baseURL, url.PathEscape(collection), url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build content-store patch: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.send(req)
	return err
}

// Delete removes a document.
func (c *ContentStoreClient) Delete(ctx context.Context, collection, id string) error {
	endpoint := fmt.Sprintf("%s/api/collections/%s/documents/%s", c.baseURL, url.PathEscape(collection), url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build content-store delete: %w", err)
	}

	_, err = c.send(req)
	return err
}

func (c *ContentStoreClient) send(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content-store request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read content-store response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus("content-store", resp.StatusCode, snippet(body))
	}
	return body, nil
}
