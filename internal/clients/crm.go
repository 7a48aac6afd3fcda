// internal/clients/crm.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/javajoker/storesync/internal/config"
	"github.com/javajoker/storesync/internal/models"
)

// CRMClient talks to the CRM/commerce backend, the source of truth for
// products, contacts, orders, and invoices. Responses are returned as raw
// payloads because field names vary across the CRM's API versions; the
// normalizer owns the fallback rules.
type CRMClient struct {
	baseURL    string
	apiKey     string
	apiVersion string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewCRMClient(cfg config.CRMConfig, timeout time.Duration) *CRMClient {
	return &CRMClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{Timeout: timeout},
		// Bulk polling pages through the whole catalog; keep the CRM API
		// under its documented request ceiling.
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
	}
}

func (c *CRMClient) GetProduct(ctx context.Context, productID string) (models.Payload, error) {
	return c.getOne(ctx, "/api/products/"+url.PathEscape(productID))
}

func (c *CRMClient) GetContact(ctx context.Context, contactID string) (models.Payload, error) {
	return c.getOne(ctx, "/api/contacts/"+url.PathEscape(contactID))
}

func (c *CRMClient) GetOrder(ctx context.Context, orderID string) (models.Payload, error) {
	return c.getOne(ctx, "/api/orders/"+url.PathEscape(orderID))
}

func (c *CRMClient) GetInvoice(ctx context.Context, invoiceID string) (models.Payload, error) {
	return c.getOne(ctx, "/api/invoices/"+url.PathEscape(invoiceID))
}

// ListProducts fetches one page of the product catalog. Pages are
// 1-indexed; an empty slice means the catalog is exhausted.
func (c *CRMClient) ListProducts(ctx context.Context, page, limit int) ([]models.Payload, error) {
	return c.getList(ctx, "/api/products", page, limit)
}

// ListContacts fetches one page of CRM contacts.
func (c *CRMClient) ListContacts(ctx context.Context, page, limit int) ([]models.Payload, error) {
	return c.getList(ctx, "/api/contacts", page, limit)
}

func (c *CRMClient) getOne(ctx context.Context, path string) (models.Payload, error) {
	body, err := c.do(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	payload, err := models.ParsePayload(body)
	if err != nil {
		return nil, fmt.Errorf("crm response for %s: %w", path, err)
	}

	// Some API versions wrap the record in a data envelope.
	if inner, ok := payload.Object("data", "record"); ok {
		return inner, nil
	}
	return payload, nil
}

func (c *CRMClient) getList(ctx context.Context, path string, page, limit int) ([]models.Payload, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.do(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data    []models.Payload `json:"data"`
		Records []models.Payload `json:"records"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Older API versions return a bare array.
		var list []models.Payload
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("crm list response for %s: %w", path, err)
		}
		return list, nil
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	return envelope.Records, nil
}

func (c *CRMClient) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("crm request throttled: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build crm request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Api-Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crm request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read crm response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus("crm", resp.StatusCode, snippet(body))
	}
	return body, nil
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
