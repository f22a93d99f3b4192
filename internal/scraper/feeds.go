package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"skill-gap/internal/domain"
	"skill-gap/internal/repository"
)

const feedTimeout = 10 * time.Second

// FeedSource is a job board with a JSON API. Unlike a Target it needs no
// HTML parsing, so postings come back in one call.
type FeedSource interface {
	Name() string
	Fetch(ctx context.Context) ([]repository.Posting, error)
}

// CollectFeeds queries every feed concurrently, drops postings already seen
// under the same source and URL, and stores the rest. A failing feed is
// logged and recorded in its sync run.
func (c *Collector) CollectFeeds(ctx context.Context, feeds []FeedSource) ([]Summary, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("nil collector/store")
	}

	type res struct {
		source   string
		postings []repository.Posting
		err      error
	}

	outCh := make(chan res, len(feeds))
	var wg sync.WaitGroup
	for _, f := range feeds {
		if f == nil {
			continue
		}
		wg.Add(1)
		go func(f FeedSource) {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, feedTimeout)
			defer cancel()

			ps, err := f.Fetch(fctx)
			outCh <- res{source: f.Name(), postings: ps, err: err}
		}(f)
	}
	wg.Wait()
	close(outCh)

	out := make([]Summary, 0, len(feeds))
	for r := range outCh {
		out = append(out, c.storeFeed(ctx, r.source, r.postings, r.err))
	}
	return out, ctx.Err()
}

func (c *Collector) storeFeed(ctx context.Context, source string, postings []repository.Posting, fetchErr error) Summary {
	sum := Summary{Source: source}
	runID, runErr := c.store.StartSyncRun(ctx, source)
	if runErr != nil {
		c.log.Printf("pipeline=market_feed source=%s status=error step=start_run err=%v", source, runErr)
	}

	status := domain.SyncStatusDone
	msg := ""
	if fetchErr != nil {
		sum.Errors++
		status = domain.SyncStatusFailed
		msg = fetchErr.Error()
		c.log.Printf("pipeline=market_feed source=%s status=error err=%v", source, fetchErr)
	}

	seen := map[string]struct{}{}
	for _, p := range postings {
		p.URL = normalizeURL(p.URL)
		if p.URL == "" {
			continue
		}
		key := strings.ToLower(source) + "|" + p.URL
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		sum.Found++

		p.Source = source
		ok, err := c.store.InsertPosting(ctx, p)
		if err != nil {
			sum.Errors++
			c.log.Printf("pipeline=market_feed source=%s status=item_error url=%s err=%v", source, p.URL, err)
			continue
		}
		if ok {
			sum.Inserted++
		}
	}

	if runErr == nil {
		if err := c.store.FinishSyncRun(context.WithoutCancel(ctx), runID, status, sum.Inserted, msg); err != nil {
			c.log.Printf("pipeline=market_feed source=%s status=error step=finish_run err=%v", source, err)
		}
	}
	c.log.Printf("pipeline=market_feed source=%s status=%s found=%d inserted=%d", source, status, sum.Found, sum.Inserted)
	return sum
}

// DevtoFeed reads the public dev.to listings API, job category only.
type DevtoFeed struct {
	client  *http.Client
	apiBase string
	perPage int
}

func NewDevtoFeed(apiBase string) *DevtoFeed {
	if strings.TrimSpace(apiBase) == "" {
		apiBase = "https://dev.to"
	}
	return &DevtoFeed{
		client:  &http.Client{Timeout: feedTimeout},
		apiBase: strings.TrimRight(apiBase, "/"),
		perPage: 50,
	}
}

func (f *DevtoFeed) Name() string {
	return "Dev.to Jobs"
}

type devtoListing struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Organization string `json:"organization_name"`
	Company      string `json:"company_name"`
	Location     string `json:"location"`
	URL          string `json:"url"`
	BodyMarkdown string `json:"body_markdown"`
	TagList      any    `json:"tag_list"`
}

func (f *DevtoFeed) Fetch(ctx context.Context) ([]repository.Posting, error) {
	u := f.apiBase + "/api/listings?category=jobs&per_page=" + strconv.Itoa(f.perPage) + "&page=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range httpHeaders() {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var items []devtoListing
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]repository.Posting, 0, len(items))
	for _, it := range items {
		if it.ID == 0 || strings.TrimSpace(it.URL) == "" {
			continue
		}
		out = append(out, repository.Posting{
			URL:         it.URL,
			Title:       collapseSpace(it.Title),
			Company:     pickNonEmpty(it.Company, it.Organization),
			Location:    strings.TrimSpace(it.Location),
			Description: strings.TrimSpace(it.BodyMarkdown + " " + tagText(it.TagList)),
			ScrapedAt:   now,
		})
	}
	return out, nil
}

// tagText flattens tag_list, which the API returns either as a comma list
// or as an array.
func tagText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.ReplaceAll(t, ",", " ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, x := range t {
			if s, ok := x.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// FeedsByName resolves feed names from the CLI. Unknown names are an error.
func FeedsByName(names []string) ([]FeedSource, error) {
	out := make([]FeedSource, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "":
			continue
		case "devto", "dev.to":
			out = append(out, NewDevtoFeed(""))
		default:
			return nil, fmt.Errorf("unknown feed %q", n)
		}
	}
	return out, nil
}
