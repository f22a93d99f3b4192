package pipeline

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/repository"
	"skill-gap/internal/scraper"
)

type PostingLister interface {
	ListPostings(ctx context.Context, limit, offset int) ([]repository.Posting, error)
}

type CountWriter interface {
	ReplaceSkillCounts(ctx context.Context, counts map[string]int) error
}

type CatalogReader interface {
	ListRoles(ctx context.Context) ([]skillgap.Role, error)
	GetResources(ctx context.Context) ([]skillgap.Resource, error)
}

// PostingCountsPipeline turns stored postings into market demand counts: the
// number of postings that mention each dictionary skill at least once.
type PostingCountsPipeline struct {
	postings PostingLister
	counts   CountWriter
	catalog  CatalogReader
	log      *log.Logger
	limit    int
}

func NewPostingCountsPipeline(postings PostingLister, counts CountWriter, catalog CatalogReader, logger *log.Logger) *PostingCountsPipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &PostingCountsPipeline{postings: postings, counts: counts, catalog: catalog, log: logger, limit: 200}
}

type RunParams struct {
	Workers int
	Limit   int
}

type CountsResult struct {
	Postings int
	Skipped  int
	Counts   map[string]int
}

func (p *PostingCountsPipeline) Run(ctx context.Context, params RunParams) (CountsResult, error) {
	res := CountsResult{Counts: map[string]int{}}
	if p == nil || p.postings == nil || p.counts == nil || p.catalog == nil {
		return res, nil
	}
	start := time.Now()
	workers := params.Workers
	if workers <= 0 {
		workers = 5
	}
	limit := params.Limit
	if limit <= 0 {
		limit = p.limit
	}

	roles, err := p.catalog.ListRoles(ctx)
	if err != nil {
		return res, err
	}
	resources, err := p.catalog.GetResources(ctx)
	if err != nil {
		return res, err
	}
	dict := skillgap.BuildDictionary(roles, resources, skillgap.WithAliases(skillgap.CommonAliases))
	if dict.Empty() {
		return res, skillgap.ErrEmptyDictionary
	}

	var mu sync.Mutex
	offset := 0
	for {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		batch, err := p.postings.ListPostings(ctx, limit, offset)
		if err != nil {
			return res, err
		}
		if len(batch) == 0 {
			break
		}

		pool := scraper.NewWorkerPool(workers, workers*2)
		results := pool.Run(ctx)
		go func() {
			defer pool.Close()
			for _, posting := range batch {
				posting := posting
				err := pool.Submit(ctx, func(ctx context.Context) error {
					text := postingText(posting)
					skills := skillgap.ExtractSkills(text, dict)

					mu.Lock()
					defer mu.Unlock()
					if text == "" {
						res.Skipped++
						return nil
					}
					res.Postings++
					for _, s := range skills {
						res.Counts[s]++
					}
					return nil
				})
				if err != nil {
					return
				}
			}
		}()
		for range results {
		}

		offset += len(batch)
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	if err := p.counts.ReplaceSkillCounts(ctx, res.Counts); err != nil {
		p.log.Printf("pipeline=posting_counts status=error err=%v", err)
		return res, err
	}
	p.log.Printf("pipeline=posting_counts status=done postings=%d skipped=%d skills=%d duration=%s",
		res.Postings, res.Skipped, len(res.Counts), time.Since(start))
	return res, nil
}

func postingText(p repository.Posting) string {
	text := strings.TrimSpace(p.Description)
	if text == "" {
		text = strings.TrimSpace(p.Title)
	}
	return text
}
