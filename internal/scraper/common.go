package scraper

import (
	"context"
	"net"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"skill-gap/internal/repository"
)

// PostingStore is the part of the market repository the collector writes to.
type PostingStore interface {
	InsertPosting(ctx context.Context, p repository.Posting) (bool, error)
	StartSyncRun(ctx context.Context, source string) (uuid.UUID, error)
	FinishSyncRun(ctx context.Context, id uuid.UUID, status string, postings int, message string) error
}

func httpHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "SkillGapMarketSync/0.1",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

func hostFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Host
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// normalizeURL drops fragments so the same posting reached through different
// anchors is stored once.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

func pickNonEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if a != "" {
		return a
	}
	return strings.TrimSpace(b)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
