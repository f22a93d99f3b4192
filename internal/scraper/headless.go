package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const headlessLinkLimit = 60

// headlessLinks renders listURL in headless Chrome and returns the absolute
// links whose URL contains the given fragment. Used for JS-rendered boards.
func headlessLinks(ctx context.Context, listURL, contains string) ([]listItem, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, 25*time.Second)
	defer reqCancel()

	var hrefs []string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(listURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.EvaluateAsDevTools(`Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`, &hrefs),
	)
	if err != nil {
		return nil, err
	}

	items := filterLinks(hrefs, contains, headlessLinkLimit)
	if len(items) == 0 {
		return nil, fmt.Errorf("no posting links found (headless)")
	}
	return items, nil
}

func filterLinks(hrefs []string, contains string, limit int) []listItem {
	seen := map[string]struct{}{}
	out := make([]listItem, 0)
	for _, h := range hrefs {
		if len(out) >= limit {
			break
		}
		u := normalizeURL(h)
		if u == "" {
			continue
		}
		if contains != "" && !strings.Contains(u, contains) {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, listItem{Link: u})
	}
	return out
}
