// Package feed fetches a user's recent posts from the external feed API.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"media_syncer/internal/domain"
	"media_syncer/internal/errs"
)

// Config holds feed source configuration.
type Config struct {
	BaseURL        string
	PageSize       int
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Source pages through the feed endpoint following its max_id cursor.
type Source struct {
	httpClient     *http.Client
	baseURL        string
	pageSize       int
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// New creates a new feed source.
func New(cfg Config, logger *slog.Logger) *Source {
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		pageSize:       cfg.PageSize,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", "feed"),
	}
}

// FetchRecent fetches every page of the user's recent media. Any page
// failure discards what was already fetched: a sync pass never commits a
// partial fetch.
func (s *Source) FetchRecent(ctx context.Context, accessToken string) ([]domain.MediaItem, error) {
	var allPosts []Post
	maxID := ""

	for page := 0; ; page++ {
		resp, err := s.fetchPage(ctx, accessToken, maxID)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		allPosts = append(allPosts, resp.Data...)

		s.logger.Debug("fetched page",
			"page", page,
			"posts", len(resp.Data),
			"total", len(allPosts),
		)

		if resp.Pagination.NextMaxID == "" || len(resp.Data) == 0 {
			break
		}
		maxID = resp.Pagination.NextMaxID
	}

	return s.transform(allPosts), nil
}

func (s *Source) fetchPage(ctx context.Context, accessToken, maxID string) (*APIResponse, error) {
	q := url.Values{}
	q.Set("access_token", accessToken)
	if s.pageSize > 0 {
		q.Set("count", strconv.Itoa(s.pageSize))
	}
	if maxID != "" {
		q.Set("max_id", maxID)
	}
	reqURL := s.baseURL + "?" + q.Encode()

	var resp *APIResponse
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		resp, err = s.doRequest(ctx, reqURL)
		if err == nil {
			return resp, nil
		}

		if attempt == s.maxAttempts {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", s.maxAttempts, err)
}

func (s *Source) doRequest(ctx context.Context, reqURL string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "MediaSyncer/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %v", errs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", errs.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", errs.ErrUpstreamUnavailable, err)
	}

	return &apiResp, nil
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}

func (s *Source) transform(posts []Post) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(posts))

	for _, p := range posts {
		item := domain.MediaItem{
			ID:       p.ID,
			Username: p.User.Username,
			PostType: p.Type,
			Link:     p.Link,
			Tags:     p.Tags,
		}

		if p.Caption != nil {
			item.Caption = p.Caption.Text
		}

		if secs, err := strconv.ParseInt(p.CreatedTime, 10, 64); err == nil {
			item.CreatedTime = time.Unix(secs, 0).UTC()
		} else {
			s.logger.Warn("failed to parse created_time",
				"external_id", p.ID,
				"created_time", p.CreatedTime,
			)
		}

		if len(p.Images) > 0 {
			item.Images = make(map[string]domain.MediaAsset, len(p.Images))
			for label, a := range p.Images {
				item.Images[label] = domain.MediaAsset{URL: a.URL}
			}
		}
		if p.Type == "video" && len(p.Videos) > 0 {
			item.Videos = make(map[string]domain.MediaAsset, len(p.Videos))
			for label, a := range p.Videos {
				item.Videos[label] = domain.MediaAsset{URL: a.URL}
			}
		}

		items = append(items, item)
	}

	return items
}
