// Package catalog resolves product queries against the external
// product-search API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"media_syncer/internal/domain"
	"media_syncer/internal/errs"
)

// Config holds catalog client configuration.
type Config struct {
	BaseURL     string
	PublicToken string
	Timeout     time.Duration
}

// Client issues product-search requests scoped to a catalog site.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	publicToken string
	logger      *slog.Logger
}

// New creates a new catalog client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		publicToken: cfg.PublicToken,
		logger:      logger.With("source", "catalog"),
	}
}

// Search runs one product search on the given site with keywords as a URL
// filter and returns the first matching product. An empty result set is
// errs.ErrNotFound; transport, status and decode failures are
// errs.ErrUpstreamUnavailable.
func (c *Client) Search(ctx context.Context, siteID, keywords string) (*domain.Product, error) {
	body, err := json.Marshal(searchRequest{
		Filter: searchFilter{
			Keywords:       keywords,
			KeywordsFields: []string{"url"},
			SiteIDs:        []string{siteID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	q := url.Values{}
	q.Set("public_token", c.publicToken)
	reqURL := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %v", errs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", errs.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", errs.ErrUpstreamUnavailable, err)
	}

	if len(searchResp.Products) == 0 {
		return nil, fmt.Errorf("%w: no products for %q on site %s", errs.ErrNotFound, keywords, siteID)
	}

	first := searchResp.Products[0]
	c.logger.Debug("resolved product",
		"site_id", siteID,
		"keywords", keywords,
		"title", first.Title,
	)

	return &domain.Product{
		Title: first.Title,
		Image: first.Image,
		Price: first.Price,
	}, nil
}
