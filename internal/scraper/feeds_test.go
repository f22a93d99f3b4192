package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"skill-gap/internal/domain"
	"skill-gap/internal/repository"
)

func devtoServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/listings" || r.URL.Query().Get("category") != "jobs" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "title": "Data  Intern", "organization_name": "Acme", "location": "Remote",
			 "url": "https://dev.to/listings/jobs/data-intern", "body_markdown": "Python and SQL", "tag_list": "pandas,tableau"},
			{"id": 2, "title": "Go Intern", "company_name": "Gophers", "url": "https://dev.to/listings/jobs/go-intern#apply",
			 "body_markdown": "Go services", "tag_list": ["docker", "kubernetes"]},
			{"id": 0, "title": "broken", "url": "https://dev.to/x"},
			{"id": 3, "title": "no url"}
		]`))
	}))
}

func TestDevtoFeed_Fetch(t *testing.T) {
	server := devtoServer()
	defer server.Close()

	ps, err := NewDevtoFeed(server.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(ps))
	}
	if ps[0].Title != "Data Intern" || ps[0].Company != "Acme" {
		t.Fatalf("unexpected first posting: %+v", ps[0])
	}
	if !strings.Contains(ps[0].Description, "pandas tableau") {
		t.Fatalf("expected string tags in description, got %q", ps[0].Description)
	}
	if !strings.Contains(ps[1].Description, "docker kubernetes") {
		t.Fatalf("expected array tags in description, got %q", ps[1].Description)
	}
}

type staticFeed struct {
	name     string
	postings []repository.Posting
	err      error
}

func (f staticFeed) Name() string { return f.name }

func (f staticFeed) Fetch(context.Context) ([]repository.Posting, error) {
	return f.postings, f.err
}

func TestCollector_CollectFeeds(t *testing.T) {
	store := newFakeStore()
	feeds := []FeedSource{
		staticFeed{name: "Board", postings: []repository.Posting{
			{URL: "https://board.example/jobs/1", Title: "A"},
			{URL: "https://board.example/jobs/1#top", Title: "A again"},
			{URL: "not a url", Title: "skip"},
			{URL: "https://board.example/jobs/2", Title: "B"},
		}},
		staticFeed{name: "Down", err: errors.New("timeout")},
	}

	sums, err := newTestCollector(store).CollectFeeds(context.Background(), feeds)
	if err != nil {
		t.Fatalf("collect feeds error: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(sums))
	}
	for _, s := range sums {
		switch s.Source {
		case "Board":
			if s.Found != 2 || s.Inserted != 2 {
				t.Fatalf("unexpected board summary: %+v", s)
			}
		case "Down":
			if s.Errors != 1 || s.Found != 0 {
				t.Fatalf("unexpected failing summary: %+v", s)
			}
		}
	}
	if len(store.postings) != 2 {
		t.Fatalf("expected 2 stored postings, got %d", len(store.postings))
	}
	failed := 0
	for _, status := range store.runs {
		if status == domain.SyncStatusFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one failed run, got %d", failed)
	}

	// same feed again stores nothing new
	sums, _ = newTestCollector(store).CollectFeeds(context.Background(), feeds[:1])
	if sums[0].Inserted != 0 {
		t.Fatalf("expected idempotent insert, got %+v", sums[0])
	}
}

func TestFeedsByName(t *testing.T) {
	feeds, err := FeedsByName([]string{"devto", " "})
	if err != nil || len(feeds) != 1 {
		t.Fatalf("expected one feed, got %d err=%v", len(feeds), err)
	}
	if _, err := FeedsByName([]string{"monster"}); err == nil {
		t.Fatalf("expected unknown feed error")
	}
}
