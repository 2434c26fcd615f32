package ogproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newContentServer emulates the content store's REST surface: status and
// publish-time filters, slug lookup, ordering, and limit/offset pagination.
func newContentServer(t *testing.T, posts []Post, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		if r.URL.Path != "/rest/v1/blog_posts" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("apikey") == "" || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()

		rows := make([]Post, 0, len(posts))
		cutoff := time.Time{}
		if pa := q.Get("published_at"); strings.HasPrefix(pa, "lte.") {
			parsed, err := time.Parse(time.RFC3339, strings.TrimPrefix(pa, "lte."))
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			cutoff = parsed
		}
		for _, p := range posts {
			if q.Get("status") == "eq.published" && p.Status != "published" {
				continue
			}
			if slug := q.Get("slug"); slug != "" && p.Slug != strings.TrimPrefix(slug, "eq.") {
				continue
			}
			if !cutoff.IsZero() && p.PublishedAt.After(cutoff) {
				continue
			}
			rows = append(rows, p)
		}

		offset, _ := strconv.Atoi(q.Get("offset"))
		limit := len(rows)
		if v := q.Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		if offset > len(rows) {
			offset = len(rows)
		}
		rows = rows[offset:]
		if len(rows) > limit {
			rows = rows[:limit]
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			t.Errorf("encode rows: %v", err)
		}
	}))
}

func newTestStore(t *testing.T, url string) *Store {
	t.Helper()
	return NewStore(ContentStoreConfig{
		URL:     url,
		APIKey:  "test-key",
		Timeout: DurationFrom(2 * time.Second),
	})
}

func TestGetPostFound(t *testing.T) {
	posts := []Post{{
		Slug:        "hello-world",
		TitleJA:     "こんにちは",
		ExcerptJA:   "テスト記事",
		Image:       "/images/hello.jpg",
		PublishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:      "published",
	}}
	ts := newContentServer(t, posts, nil)
	defer ts.Close()

	s := newTestStore(t, ts.URL)
	got, err := s.GetPost(context.Background(), "hello-world")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.TitleJA != "こんにちは" {
		t.Errorf("TitleJA = %q", got.TitleJA)
	}
	if !got.PublishedAt.Equal(posts[0].PublishedAt) {
		t.Errorf("PublishedAt = %s", got.PublishedAt)
	}
}

func TestGetPostNotFound(t *testing.T) {
	ts := newContentServer(t, nil, nil)
	defer ts.Close()

	s := newTestStore(t, ts.URL)
	if _, err := s.GetPost(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetPostNetworkFailure(t *testing.T) {
	ts := newContentServer(t, nil, nil)
	ts.Close()

	s := newTestStore(t, ts.URL)
	if _, err := s.GetPost(context.Background(), "any"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound on network failure", err)
	}
}

func TestGetPostExcludesFutureDated(t *testing.T) {
	posts := []Post{{
		Slug:        "scheduled",
		PublishedAt: time.Now().Add(24 * time.Hour),
		Status:      "published",
	}}
	ts := newContentServer(t, posts, nil)
	defer ts.Close()

	s := newTestStore(t, ts.URL)
	if _, err := s.GetPost(context.Background(), "scheduled"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound for future-dated post", err)
	}
}

func TestListPostsExcludesFutureAndDrafts(t *testing.T) {
	now := time.Now()
	posts := []Post{
		{Slug: "a", PublishedAt: now.Add(24 * time.Hour), Status: "published"},
		{Slug: "b", PublishedAt: now.Add(-24 * time.Hour), Status: "published"},
		{Slug: "c", PublishedAt: now.Add(-48 * time.Hour), Status: "draft"},
	}
	ts := newContentServer(t, posts, nil)
	defer ts.Close()

	s := newTestStore(t, ts.URL)
	got, err := s.ListPosts(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "b" {
		t.Errorf("got %d posts %v, want only slug b", len(got), slugs(got))
	}
}

func TestListPostsPaginates(t *testing.T) {
	posts := make([]Post, fetchPageSize+3)
	for i := range posts {
		posts[i] = Post{
			Slug:        fmt.Sprintf("post-%d", i),
			PublishedAt: time.Now().Add(-time.Duration(i+1) * time.Hour),
			Status:      "published",
		}
	}
	var requests atomic.Int64
	ts := newContentServer(t, posts, &requests)
	defer ts.Close()

	s := newTestStore(t, ts.URL)
	got, err := s.ListPosts(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(got) != len(posts) {
		t.Errorf("got %d posts, want %d", len(got), len(posts))
	}
	if n := requests.Load(); n < 2 {
		t.Errorf("expected at least 2 pages fetched, got %d requests", n)
	}
}

func TestListPostsHonorsLimit(t *testing.T) {
	posts := make([]Post, 10)
	for i := range posts {
		posts[i] = Post{
			Slug:        fmt.Sprintf("post-%d", i),
			PublishedAt: time.Now().Add(-time.Duration(i+1) * time.Hour),
			Status:      "published",
		}
	}
	ts := newContentServer(t, posts, nil)
	defer ts.Close()

	s := newTestStore(t, ts.URL)
	got, err := s.ListPosts(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("got %d posts, want 5", len(got))
	}
}

func TestListPostsDegradesOnUpstreamFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	s := newTestStore(t, ts.URL)
	got, err := s.ListPosts(context.Background(), 0)
	if err == nil {
		t.Fatal("expected degraded error")
	}
	if len(got) != 0 {
		t.Errorf("got %d posts, want empty degraded result", len(got))
	}
}

func TestListPostsDegradesOnMalformedPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"unexpected": "shape"}`))
	}))
	defer ts.Close()

	s := newTestStore(t, ts.URL)
	got, err := s.ListPosts(context.Background(), 0)
	if err == nil {
		t.Fatal("expected degraded error for malformed payload")
	}
	if len(got) != 0 {
		t.Errorf("got %d posts, want empty", len(got))
	}
}

func slugs(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}
