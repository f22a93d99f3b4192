package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"

	"skill-gap/internal/domain"
	"skill-gap/internal/repository"
)

// Target describes one careers site: a listing page (optionally paginated
// with %d) whose links lead to posting detail pages.
type Target struct {
	Source             string `json:"source"`
	ListURL            string `json:"list_url"`
	LinkSelector       string `json:"link_selector"`
	LinkContains       string `json:"link_contains"`
	TitleSelector      string `json:"title_selector"`
	LocationSelector   string `json:"location_selector"`
	DetailBodySelector string `json:"detail_body_selector"`
	Headless           bool   `json:"headless"`
}

func (t Target) withDefaults() Target {
	if strings.TrimSpace(t.LinkSelector) == "" {
		t.LinkSelector = "a[href]"
	}
	if strings.TrimSpace(t.TitleSelector) == "" {
		t.TitleSelector = "title"
	}
	if strings.TrimSpace(t.DetailBodySelector) == "" {
		t.DetailBodySelector = "body"
	}
	return t
}

type Summary struct {
	Source   string `json:"source"`
	Found    int    `json:"found"`
	Inserted int    `json:"inserted"`
	Errors   int    `json:"errors"`
}

type listItem struct {
	Link     string
	Title    string
	Location string
}

type detail struct {
	Title       string
	Location    string
	Description string
	URL         string
}

type linkFinder func(ctx context.Context, listURL, contains string) ([]listItem, error)

type Collector struct {
	store   PostingStore
	log     *log.Logger
	workers int
	rps     int
	delay   time.Duration

	headless linkFinder
}

func NewCollector(store PostingStore, workers, rps int, logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Collector{
		store:    store,
		log:      logger,
		workers:  workers,
		rps:      rps,
		delay:    450 * time.Millisecond,
		headless: headlessLinks,
	}
}

// Collect scrapes every target and stores new postings. A failing target is
// recorded in its sync run and does not stop the others.
func (c *Collector) Collect(ctx context.Context, targets []Target, pages int) ([]Summary, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("nil collector/store")
	}
	out := make([]Summary, 0, len(targets))
	for _, t := range targets {
		if strings.TrimSpace(t.Source) == "" || strings.TrimSpace(t.ListURL) == "" {
			continue
		}
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		out = append(out, c.collectTarget(ctx, t.withDefaults(), pages))
	}
	return out, nil
}

func (c *Collector) collectTarget(ctx context.Context, t Target, pages int) Summary {
	sum := Summary{Source: t.Source}
	start := time.Now()
	c.log.Printf("pipeline=market_collect source=%s status=started", t.Source)

	runID, err := c.store.StartSyncRun(ctx, t.Source)
	if err != nil {
		c.log.Printf("pipeline=market_collect source=%s status=error step=start_run err=%v", t.Source, err)
	}

	var inserted atomic.Int64
	pool := NewWorkerPool(c.workers, c.workers*2)
	pool.SetRateLimit(c.rps)
	results := pool.Run(ctx)

	var listErrs []string
	seen := map[string]struct{}{}
	listed := make(chan struct{})
	go func() {
		defer close(listed)
		defer pool.Close()
		for page := 1; page <= maxInt(1, pages); page++ {
			listURL := t.ListURL
			if strings.Contains(listURL, "%d") {
				listURL = fmt.Sprintf(listURL, page)
			}
			items, err := c.listing(ctx, t, listURL)
			if err != nil {
				listErrs = append(listErrs, fmt.Sprintf("list page %d: %v", page, err))
				continue
			}
			for _, it := range items {
				if _, ok := seen[it.Link]; ok {
					continue
				}
				seen[it.Link] = struct{}{}
				sum.Found++
				it := it
				err := pool.Submit(ctx, func(ctx context.Context) error {
					d, err := c.scrapeDetailPage(ctx, t, it.Link)
					if err != nil {
						return fmt.Errorf("%s: %w", it.Link, err)
					}
					ok, err := c.store.InsertPosting(ctx, repository.Posting{
						Source:      t.Source,
						URL:         pickNonEmpty(normalizeURL(d.URL), it.Link),
						Title:       pickNonEmpty(d.Title, it.Title),
						Company:     t.Source,
						Location:    pickNonEmpty(d.Location, it.Location),
						Description: d.Description,
					})
					if err != nil {
						return err
					}
					if ok {
						inserted.Add(1)
					}
					return nil
				})
				if err != nil {
					return
				}
			}
		}
	}()

	for res := range results {
		if res.Err != nil {
			sum.Errors++
			c.log.Printf("pipeline=market_collect source=%s status=item_error err=%v", t.Source, res.Err)
		}
	}
	<-listed

	sum.Inserted = int(inserted.Load())
	sum.Errors += len(listErrs)

	status := domain.SyncStatusDone
	msg := ""
	if len(listErrs) > 0 && sum.Found == 0 {
		status = domain.SyncStatusFailed
		msg = strings.Join(listErrs, "; ")
	}
	if ctx.Err() != nil {
		status = domain.SyncStatusFailed
		msg = ctx.Err().Error()
	}
	if err == nil {
		if ferr := c.store.FinishSyncRun(context.WithoutCancel(ctx), runID, status, sum.Inserted, msg); ferr != nil {
			c.log.Printf("pipeline=market_collect source=%s status=error step=finish_run err=%v", t.Source, ferr)
		}
	}
	c.log.Printf("pipeline=market_collect source=%s status=%s found=%d inserted=%d errors=%d duration=%s",
		t.Source, status, sum.Found, sum.Inserted, sum.Errors, time.Since(start))
	return sum
}

func (c *Collector) listing(ctx context.Context, t Target, listURL string) ([]listItem, error) {
	if t.Headless {
		if c.headless == nil {
			return nil, errors.New("headless link finder not configured")
		}
		return c.headless(ctx, listURL, t.LinkContains)
	}
	return c.scrapeListingPage(ctx, t, listURL)
}

func (c *Collector) newCollector(rawURL string) *colly.Collector {
	allowed := hostFromURL(rawURL)
	var cc *colly.Collector
	if allowed == "" {
		cc = colly.NewCollector()
	} else {
		cc = colly.NewCollector(colly.AllowedDomains(allowed))
	}
	_ = cc.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, RandomDelay: c.delay, Delay: c.delay})
	cc.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})
	return cc
}

func (c *Collector) scrapeListingPage(ctx context.Context, t Target, listURL string) ([]listItem, error) {
	cc := c.newCollector(listURL)

	items := make([]listItem, 0)
	dedup := map[string]struct{}{}

	cc.OnHTML(t.LinkSelector, func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" {
			return
		}
		abs := normalizeURL(e.Request.AbsoluteURL(href))
		if abs == "" {
			return
		}
		if t.LinkContains != "" && !strings.Contains(abs, t.LinkContains) {
			return
		}
		if _, ok := dedup[abs]; ok {
			return
		}
		dedup[abs] = struct{}{}

		title := ""
		if t.TitleSelector != "title" {
			title = collapseSpace(e.DOM.Find(t.TitleSelector).Text())
		}
		location := ""
		if strings.TrimSpace(t.LocationSelector) != "" {
			location = collapseSpace(e.DOM.Find(t.LocationSelector).Text())
		}
		items = append(items, listItem{Link: abs, Title: title, Location: location})
	})

	var reqErr error
	cc.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := cc.Visit(listURL); err != nil {
		return nil, err
	}
	cc.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	return items, nil
}

func (c *Collector) scrapeDetailPage(ctx context.Context, t Target, jobURL string) (detail, error) {
	cc := c.newCollector(jobURL)

	out := detail{URL: jobURL}
	var reqErr error

	cc.OnHTML(t.TitleSelector, func(e *colly.HTMLElement) {
		if out.Title == "" {
			out.Title = collapseSpace(e.Text)
		}
	})
	if strings.TrimSpace(t.LocationSelector) != "" {
		cc.OnHTML(t.LocationSelector, func(e *colly.HTMLElement) {
			if out.Location == "" {
				out.Location = collapseSpace(e.Text)
			}
		})
	}
	cc.OnHTML(t.DetailBodySelector, func(e *colly.HTMLElement) {
		out.Description = collapseSpace(e.Text)
	})
	cc.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return detail{}, ctx.Err()
	}
	if err := cc.Visit(jobURL); err != nil {
		return detail{}, err
	}
	cc.Wait()
	if reqErr != nil {
		return detail{}, reqErr
	}
	return out, nil
}
