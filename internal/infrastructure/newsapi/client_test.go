package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchCategoryParsesAndFilters(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("category"); got != "technology" {
			t.Errorf("expected category=technology, got %q", got)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"source": {"name": "Wired"}, "title": "Chips get faster", "description": "A new node ships.", "content": "A new node ships. Yields look strong.", "publishedAt": "2026-08-29T10:00:00Z"},
				{"source": {"name": "Gone"}, "title": "[Removed]", "description": "", "content": ""},
				{"source": {"name": "Empty"}, "title": "", "description": "no title", "content": ""}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, 20, time.Second)
	articles, err := client.FetchCategory(context.Background(), "technology")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article after filtering, got %d", len(articles))
	}
	if articles[0].Source != "Wired" || articles[0].Category != "technology" {
		t.Fatalf("unexpected article metadata: %+v", articles[0])
	}
	if articles[0].Content != "A new node ships. Yields look strong." {
		t.Fatalf("expected deduplicated body, got %q", articles[0].Content)
	}
}

func TestFetchCategoryProviderError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "error", "code": "apiKeyInvalid", "message": "bad key"}`))
	}))
	defer server.Close()

	client := NewClient("bad", server.URL, 20, time.Second)
	if _, err := client.FetchCategory(context.Background(), "business"); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestFetchCategoryHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("key", server.URL, 20, time.Second)
	if _, err := client.FetchCategory(context.Background(), "health"); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestMergeBody(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                 string
		description, content string
		want                 string
	}{
		{"both distinct", "First.", "Second.", "First. Second."},
		{"content repeats description", "First.", "First. And more.", "First. And more."},
		{"description only", "Only this.", "", "Only this."},
		{"content only", "", "Body text.", "Body text."},
	}
	for _, tc := range cases {
		if got := mergeBody(tc.description, tc.content); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
