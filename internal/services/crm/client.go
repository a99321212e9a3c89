// Package crm talks to the external CRM's REST API: contacts, catalog
// products and invoices. Calls are bounded by the configured client
// timeout and carry the caller's context, so a slow CRM can never stall a
// critical path that forgot to detach.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client is the CRM surface the application uses.
type Client interface {
	// FindContactByEmail returns the first contact matching the email,
	// or nil when none exists.
	FindContactByEmail(ctx context.Context, email string) (*Contact, error)
	CreateContact(ctx context.Context, params CreateContactParams) (*Contact, error)

	FetchProducts(ctx context.Context) ([]Product, error)
	// FetchProductPrice returns the product's first price, or nil when
	// the product has none.
	FetchProductPrice(ctx context.Context, productID string) (*Price, error)

	CreateInvoice(ctx context.Context, params InvoiceParams) (*Invoice, error)
	RecordInvoicePayment(ctx context.Context, invoiceID string, amount float64) error
}

// Config holds CRM connection settings.
type Config struct {
	BaseURL      string
	APIKey       string
	LocationID   string
	BusinessName string
	Timeout      time.Duration
}

type httpClient struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger
}

// NewClient builds the production CRM client.
func NewClient(cfg Config, log zerolog.Logger) Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &httpClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With().Str("component", "crm").Logger(),
	}
}

func (c *httpClient) FindContactByEmail(ctx context.Context, email string) (*Contact, error) {
	q := url.Values{"email": {email}}
	var out struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := c.do(ctx, http.MethodGet, "/contacts/search", q, nil, &out); err != nil {
		return nil, fmt.Errorf("contact search failed: %w", err)
	}
	if len(out.Contacts) == 0 {
		return nil, nil
	}
	return &out.Contacts[0], nil
}

func (c *httpClient) CreateContact(ctx context.Context, params CreateContactParams) (*Contact, error) {
	body := map[string]interface{}{
		"locationId":   c.cfg.LocationID,
		"email":        params.Email,
		"name":         params.Name,
		"profilePhoto": params.Photo,
		"tags":         params.Tags,
	}
	var out struct {
		Contact *Contact `json:"contact"`
	}
	if err := c.do(ctx, http.MethodPost, "/contacts/", nil, body, &out); err != nil {
		return nil, fmt.Errorf("contact creation failed: %w", err)
	}
	return out.Contact, nil
}

func (c *httpClient) FetchProducts(ctx context.Context) ([]Product, error) {
	q := url.Values{"locationId": {c.cfg.LocationID}}
	var out struct {
		Products []Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/", q, nil, &out); err != nil {
		return nil, fmt.Errorf("product fetch failed: %w", err)
	}
	return out.Products, nil
}

func (c *httpClient) FetchProductPrice(ctx context.Context, productID string) (*Price, error) {
	q := url.Values{"locationId": {c.cfg.LocationID}}
	var out struct {
		Prices []Price `json:"prices"`
	}
	path := fmt.Sprintf("/products/%s/price", url.PathEscape(productID))
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, fmt.Errorf("price fetch failed: %w", err)
	}
	if len(out.Prices) == 0 {
		return nil, nil
	}
	return &out.Prices[0], nil
}

func (c *httpClient) CreateInvoice(ctx context.Context, params InvoiceParams) (*Invoice, error) {
	today := time.Now().UTC().Format("2006-01-02")
	body := map[string]interface{}{
		"altId":    c.cfg.LocationID,
		"altType":  "location",
		"name":     fmt.Sprintf("Invoice for %s", params.ProductName),
		"currency": params.Currency,
		"businessDetails": map[string]interface{}{
			"name": c.cfg.BusinessName,
		},
		"items": []map[string]interface{}{
			{
				"name":      params.ProductName,
				"productId": params.ProductID,
				"priceId":   params.PriceID,
				"qty":       1,
				"amount":    params.Amount,
				"currency":  params.Currency,
				"type":      "one_time",
			},
		},
		"contactDetails": map[string]interface{}{
			"id":    params.ContactID,
			"name":  params.ContactName,
			"email": params.ContactEmail,
		},
		"invoiceNumber":         params.InvoiceNumber,
		"issueDate":             today,
		"dueDate":               today,
		"liveMode":              true,
		"automaticTaxesEnabled": false,
	}
	var out Invoice
	if err := c.do(ctx, http.MethodPost, "/invoices/", nil, body, &out); err != nil {
		return nil, fmt.Errorf("invoice creation failed: %w", err)
	}
	return &out, nil
}

func (c *httpClient) RecordInvoicePayment(ctx context.Context, invoiceID string, amount float64) error {
	body := map[string]interface{}{
		"altId":       c.cfg.LocationID,
		"altType":     "location",
		"mode":        "other",
		"notes":       "Payment recorded from dashboard",
		"amount":      amount,
		"fulfilledAt": time.Now().UTC().Format(time.RFC3339),
	}
	path := fmt.Sprintf("/invoices/%s/record-payment", url.PathEscape(invoiceID))
	if err := c.do(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("payment recording failed: %w", err)
	}
	return nil
}

func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	fullURL := c.cfg.BaseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Version", "2021-07-28")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("crm responded %d: %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
