package ogproxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// ErrNotFound is returned when no published post matches a slug. Network and
// decode failures collapse into it as well: the fetch layer never surfaces an
// error the dispatcher would have to recover from.
var ErrNotFound = errors.New("ogproxy: post not found")

const (
	postsResource = "/rest/v1/blog_posts"
	postColumns   = "slug,title_ja,title_en,excerpt_ja,excerpt_en,image,published_at,updated_at,category_ja,category_en,status"

	// fetchPageSize is the bulk-fetch page size; maxFetchPages bounds the
	// pagination loop against a misbehaving backend.
	fetchPageSize = 1000
	maxFetchPages = 20
)

// Store reads published posts from the REST-exposed content store. The
// published filter (status and effective publish time) lives in the query
// itself, so future-dated and draft posts never reach the renderers.
type Store struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  echo.Logger
}

// NewStore builds a content-store client from configuration.
func NewStore(cfg ContentStoreConfig) *Store {
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{
		client:  &http.Client{Timeout: timeout, Transport: newTransport()},
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// SetLogger attaches a logger for degradation warnings.
func (s *Store) SetLogger(l echo.Logger) {
	s.logger = l
}

// GetPost returns the published post with the given slug. Any failure, from a
// network error or bad status down to simply no matching row, yields
// ErrNotFound; the caller falls back to a generic document.
func (s *Store) GetPost(ctx context.Context, slug string) (Post, error) {
	q := url.Values{}
	q.Set("select", postColumns)
	q.Set("slug", "eq."+slug)
	q.Set("status", "eq.published")
	q.Set("published_at", "lte."+time.Now().UTC().Format(time.RFC3339))
	q.Set("limit", "1")
	rows, err := s.query(ctx, q)
	if err != nil {
		s.warnf("content store: get post %q: %v", slug, err)
		return Post{}, ErrNotFound
	}
	if len(rows) == 0 {
		return Post{}, ErrNotFound
	}
	return rows[0], nil
}

// ListPosts returns published posts sorted most recent first. limit <= 0
// fetches everything, paginating until a short page signals end-of-data. The
// returned error marks a degraded (partial or empty) result; the posts
// accumulated so far are still usable.
func (s *Store) ListPosts(ctx context.Context, limit int) ([]Post, error) {
	all := []Post{}
	now := time.Now().UTC().Format(time.RFC3339)
	for page := 0; page < maxFetchPages; page++ {
		size := fetchPageSize
		if limit > 0 && limit-len(all) < size {
			size = limit - len(all)
		}
		if size <= 0 {
			break
		}
		q := url.Values{}
		q.Set("select", postColumns)
		q.Set("status", "eq.published")
		q.Set("published_at", "lte."+now)
		q.Set("order", "published_at.desc")
		q.Set("limit", strconv.Itoa(size))
		q.Set("offset", strconv.Itoa(len(all)))
		rows, err := s.query(ctx, q)
		if err != nil {
			s.warnf("content store: list posts (offset %d): %v", len(all), err)
			return all, err
		}
		all = append(all, rows...)
		if len(rows) < size {
			break
		}
	}
	return all, nil
}

func (s *Store) query(ctx context.Context, q url.Values) ([]Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+postsResource+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content store request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("content store status %d", resp.StatusCode)
	}
	var rows []Post
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode content store payload: %w", err)
	}
	return rows, nil
}

func (s *Store) warnf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Warnf(format, args...)
	}
}
