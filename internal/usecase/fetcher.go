package usecase

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/naka-gawa/github-search/internal/domain"
	"github.com/naka-gawa/github-search/internal/gateway"
)

// OutcomeKind tags a FetchOutcome.
type OutcomeKind int

const (
	// OutcomeFetched carries resolved repository metadata.
	OutcomeFetched OutcomeKind = iota
	// OutcomeRateLimited means metadata could not be resolved because of a rate limit.
	OutcomeRateLimited
)

// FetchOutcome is the result of fetching one search result.
// Metadata is only set for OutcomeFetched.
type FetchOutcome struct {
	Kind     OutcomeKind
	Entry    domain.ResultEntry
	Metadata *domain.RepositoryMetadata
}

// RateLimitAwareFetcher resolves search results to repository metadata,
// cooling down once whenever GitHub reports a rate limit.
type RateLimitAwareFetcher struct {
	searcher gateway.Searcher
	delay    DelayStrategy
	logger   *log.Logger
}

// NewRateLimitAwareFetcher creates a fetcher. A nil delay strategy means FixedDelays(DefaultDelays()).
func NewRateLimitAwareFetcher(searcher gateway.Searcher, delay DelayStrategy, logger *log.Logger) *RateLimitAwareFetcher {
	if delay == nil {
		delay = FixedDelays(DefaultDelays())
	}
	return &RateLimitAwareFetcher{
		searcher: searcher,
		delay:    delay,
		logger:   logger,
	}
}

// Fetch resolves the result at index in page.
//
// A rate limit is not an error: the fetcher waits for the cooldown and
// returns OutcomeRateLimited without resolving metadata. When loading the
// result itself was rate limited, the load is retried once after the
// cooldown so the entry can still be recorded. Every other error is
// returned as is.
//
// Secondary rate limits are slept out inside the HTTP transport, so only
// primary limits and secondary sleeps longer than the transport's single
// sleep limit reach this fallback.
func (f *RateLimitAwareFetcher) Fetch(ctx context.Context, page gateway.ResultPage, index int) (FetchOutcome, error) {
	entry, err := page.Entry(ctx, index)
	if gateway.IsRateLimited(err) {
		f.logger.Warn("Rate limited while loading search results, cooling down", "index", index)
		if err := f.wait(ctx, DelayContext{Kind: DelayCooldown, Index: index}); err != nil {
			return FetchOutcome{}, err
		}
		if entry, err = page.Entry(ctx, index); err != nil {
			return FetchOutcome{}, err
		}
		return FetchOutcome{Kind: OutcomeRateLimited, Entry: entry}, nil
	}
	if err != nil {
		return FetchOutcome{}, err
	}

	md, err := f.searcher.Repository(ctx, entry.Repository)
	if gateway.IsRateLimited(err) {
		f.logger.Warn("Rate limited while resolving repository, cooling down", "index", index, "repo", entry.Repository.FullName)
		if err := f.wait(ctx, DelayContext{Kind: DelayCooldown, Index: index}); err != nil {
			return FetchOutcome{}, err
		}
		return FetchOutcome{Kind: OutcomeRateLimited, Entry: entry}, nil
	}
	if err != nil {
		return FetchOutcome{}, err
	}

	if err := f.wait(ctx, DelayContext{Kind: DelayPacing, Index: index}); err != nil {
		return FetchOutcome{}, err
	}
	return FetchOutcome{Kind: OutcomeFetched, Entry: entry, Metadata: md}, nil
}

func (f *RateLimitAwareFetcher) wait(ctx context.Context, c DelayContext) error {
	d := f.delay(c)
	if d > 0 {
		f.logger.Debug("Sleeping", "kind", c.Kind, "duration", d)
	}
	return sleep(ctx, d)
}
