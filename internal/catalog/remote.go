package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rosamendez/emberglow-backend/pkg/config"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

var errRemoteBaseURLRequired = errors.New("remote catalog base url is required")

// VersionMarkers are opaque change-detection tokens served by the remote
// catalog. Compare for inequality only; never parse.
type VersionMarkers struct {
	Content  string `json:"content"`
	Products string `json:"products"`
}

// Remote is the remote catalog service surface consumed by the store and the
// sync poller.
type Remote interface {
	ListProducts(ctx context.Context) ([]Product, error)
	CreateProduct(ctx context.Context, product Product) error
	UpdateProduct(ctx context.Context, product Product) error
	DeleteProduct(ctx context.Context, id string) error
	VersionMarkers(ctx context.Context) (*VersionMarkers, error)
	GetContent(ctx context.Context, page string) (map[string]string, error)
	PutContent(ctx context.Context, page string, blocks map[string]string) error
}

// RemoteClient talks to the remote catalog/content service over HTTP. Every
// call carries a bounded timeout via the underlying http.Client.
type RemoteClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// RemoteOption configures optional client behavior.
type RemoteOption func(*RemoteClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(c *RemoteClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewRemoteClient builds the remote catalog client from configuration.
func NewRemoteClient(cfg config.CatalogConfig, opts ...RemoteOption) (*RemoteClient, error) {
	baseURL := strings.TrimSpace(cfg.RemoteBaseURL)
	if baseURL == "" {
		return nil, errRemoteBaseURLRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &RemoteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(cfg.RemoteAPIKey),
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// ListProducts fetches the full remote product snapshot.
func (c *RemoteClient) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct propagates a locally created product to the remote catalog.
func (c *RemoteClient) CreateProduct(ctx context.Context, product Product) error {
	if strings.TrimSpace(product.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return c.do(ctx, http.MethodPost, "products", product, nil)
}

// UpdateProduct propagates a local update to the remote catalog.
func (c *RemoteClient) UpdateProduct(ctx context.Context, product Product) error {
	if strings.TrimSpace(product.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return c.do(ctx, http.MethodPut, "products/"+url.PathEscape(product.ID), product, nil)
}

// DeleteProduct propagates a local delete to the remote catalog.
func (c *RemoteClient) DeleteProduct(ctx context.Context, id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return c.do(ctx, http.MethodDelete, "products/"+url.PathEscape(trimmed), nil, nil)
}

// VersionMarkers fetches the change-detection markers for content and
// products.
func (c *RemoteClient) VersionMarkers(ctx context.Context) (*VersionMarkers, error) {
	var markers VersionMarkers
	if err := c.do(ctx, http.MethodGet, "versions", nil, &markers); err != nil {
		return nil, err
	}
	return &markers, nil
}

// GetContent fetches the editable text blocks for one page.
func (c *RemoteClient) GetContent(ctx context.Context, page string) (map[string]string, error) {
	trimmed := strings.TrimSpace(page)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page is required")
	}
	var blocks map[string]string
	if err := c.do(ctx, http.MethodGet, "content/"+url.PathEscape(trimmed), nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// PutContent replaces the editable text blocks for one page.
func (c *RemoteClient) PutContent(ctx context.Context, page string, blocks map[string]string) error {
	trimmed := strings.TrimSpace(page)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "page is required")
	}
	return c.do(ctx, http.MethodPut, "content/"+url.PathEscape(trimmed), blocks, nil)
}

func (c *RemoteClient) do(ctx context.Context, method, path string, body, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "remote catalog client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal catalog request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build catalog request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute catalog request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "catalog request failed")
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog response")
	}
	return nil
}
