// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/naka-gawa/github-search/internal/domain"
	"github.com/naka-gawa/github-search/internal/gateway"
)

// DefaultMaxItems caps how many search results are processed per keyword.
// GitHub code search never serves more than 1000 results anyway.
const DefaultMaxItems = 1000

// RateLimitPolicy decides what happens to a result whose metadata could not
// be resolved because of a rate limit.
type RateLimitPolicy string

const (
	// PolicyAccept records the result without consulting the popularity filter.
	PolicyAccept RateLimitPolicy = "accept"
	// PolicySkip drops the result.
	PolicySkip RateLimitPolicy = "skip"
)

// ParseRateLimitPolicy validates a policy name.
func ParseRateLimitPolicy(s string) (RateLimitPolicy, error) {
	switch p := RateLimitPolicy(s); p {
	case PolicyAccept, PolicySkip:
		return p, nil
	default:
		return "", fmt.Errorf("unknown rate limit policy %q (want %q or %q)", s, PolicyAccept, PolicySkip)
	}
}

// Config controls a SearchOrchestrator.
type Config struct {
	// MaxItems caps the processed window per keyword. Default DefaultMaxItems.
	MaxItems int
	// MinStars is the popularity threshold. Default DefaultMinStars.
	MinStars int
	// RateLimitPolicy applies to rate limited results. Default PolicyAccept.
	RateLimitPolicy RateLimitPolicy
	// Delay decides every pause of the loop. Default FixedDelays(DefaultDelays()).
	Delay DelayStrategy
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxItems:        DefaultMaxItems,
		MinStars:        DefaultMinStars,
		RateLimitPolicy: PolicyAccept,
		Delay:           FixedDelays(DefaultDelays()),
	}
}

// Progress receives updates while a keyword is processed.
type Progress interface {
	Start(keyword string, total int)
	Advance()
	Finish(err error)
}

type nopProgress struct{}

func (nopProgress) Start(string, int) {}
func (nopProgress) Advance()          {}
func (nopProgress) Finish(error)      {}

// SearchOrchestrator is the use case for searching GitHub and keeping popular results.
// It drives the fetcher and the filter over the results of each keyword, one at a time.
type SearchOrchestrator struct {
	searcher gateway.Searcher
	fetcher  *RateLimitAwareFetcher
	filter   PopularityFilter
	cfg      Config
	progress Progress
	logger   *log.Logger
}

// NewSearchOrchestrator creates a new SearchOrchestrator instance. A nil progress disables progress reporting.
func NewSearchOrchestrator(searcher gateway.Searcher, cfg Config, progress Progress, logger *log.Logger) *SearchOrchestrator {
	if cfg.Delay == nil {
		cfg.Delay = FixedDelays(DefaultDelays())
	}
	if cfg.RateLimitPolicy == "" {
		cfg.RateLimitPolicy = PolicyAccept
	}
	if progress == nil {
		progress = nopProgress{}
	}
	return &SearchOrchestrator{
		searcher: searcher,
		fetcher:  NewRateLimitAwareFetcher(searcher, cfg.Delay, logger),
		filter:   PopularityFilter{MinStars: cfg.MinStars},
		cfg:      cfg,
		progress: progress,
		logger:   logger,
	}
}

// Search processes the first min(total, MaxItems) results of keyword in order
// and returns the accepted ones in processing order. Any error other than a
// rate limit aborts the keyword and no results are returned.
func (o *SearchOrchestrator) Search(ctx context.Context, keyword string) ([]domain.AcceptedResult, error) {
	o.logger.Infof("Searching GitHub using keyword: %s", keyword)
	page, err := o.searcher.SearchCode(ctx, domain.SearchQuery(keyword))
	if err != nil {
		return nil, err
	}

	window := min(page.Total(), o.cfg.MaxItems)
	o.logger.Debug("Processing search results", "keyword", keyword, "total", page.Total(), "window", window)

	o.progress.Start(keyword, window)
	results := make([]domain.AcceptedResult, 0)
	for i := 0; i < window; i++ {
		outcome, err := o.fetcher.Fetch(ctx, page, i)
		if err != nil {
			o.progress.Finish(err)
			return nil, fmt.Errorf("failed to process result %d for keyword %q: %w", i, keyword, err)
		}

		switch outcome.Kind {
		case OutcomeFetched:
			if o.filter.Accepts(*outcome.Metadata) {
				results = append(results, domain.AcceptedResult{
					URL:      outcome.Entry.URL,
					FullName: outcome.Metadata.FullName,
					Stars:    outcome.Metadata.Stars,
				})
			}
		case OutcomeRateLimited:
			if o.cfg.RateLimitPolicy == PolicyAccept {
				results = append(results, domain.AcceptedResult{
					URL:         outcome.Entry.URL,
					FullName:    outcome.Entry.Repository.FullName,
					RateLimited: true,
				})
			} else {
				o.logger.Debug("Dropping rate limited result", "repo", outcome.Entry.Repository.FullName)
			}
		}
		o.progress.Advance()
	}
	o.progress.Finish(nil)
	return results, nil
}

// SearchAll runs Search for every keyword in order. When more than one
// keyword is given, the keyword delay separates consecutive searches.
func (o *SearchOrchestrator) SearchAll(ctx context.Context, keywords []string) (*domain.ResultsByKeyword, error) {
	o.logger.Info("Usecase: Starting search...", "keywords", len(keywords))
	results := domain.NewResultsByKeyword()
	for i, keyword := range keywords {
		found, err := o.Search(ctx, keyword)
		if err != nil {
			return nil, err
		}
		results.Set(keyword, found)
		o.logSummary(keyword, Summarize(found))

		if len(keywords) > 1 && i < len(keywords)-1 {
			d := o.cfg.Delay(DelayContext{Kind: DelayKeyword, Keyword: keyword})
			if d > 0 {
				o.logger.Infof("Waiting %s before the next keyword...", d)
			}
			if err := sleep(ctx, d); err != nil {
				return nil, err
			}
		}
	}
	o.logger.Info("Usecase: Search complete.", "results", results.Len())
	return results, nil
}

func (o *SearchOrchestrator) logSummary(keyword string, s Summary) {
	o.logger.Info("Keyword done",
		"keyword", keyword,
		"accepted", s.Accepted,
		"rate_limited", s.RateLimited,
		"min_stars", s.MinStars,
		"median_stars", s.MedianStars,
		"mean_stars", s.MeanStars,
		"max_stars", s.MaxStars,
	)
}
