// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-search/internal/domain"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// Metadata backends selectable through Options.MetadataBackend.
const (
	BackendREST    = "rest"
	BackendGraphQL = "graphql"
)

// searchPageSize is the largest page the code search API serves.
const searchPageSize = 100

// ErrRateLimited is returned (wrapped) whenever GitHub rejects a call because
// a primary or secondary rate limit was exceeded.
var ErrRateLimited = errors.New("github rate limit exceeded")

// IsRateLimited reports whether err was caused by a GitHub rate limit.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// ResultPage is an indexable view over the results of a single code search.
type ResultPage interface {
	// Total is the number of results GitHub reported for the query.
	Total() int
	// Entry returns the result at the zero-based index.
	Entry(ctx context.Context, index int) (domain.ResultEntry, error)
}

// Searcher defines the behavior of a gateway for searching GitHub.
type Searcher interface {
	SearchCode(ctx context.Context, query domain.SearchQuery) (ResultPage, error)
	Repository(ctx context.Context, ref domain.RepositoryRef) (*domain.RepositoryMetadata, error)
}

// Options tunes the gateway. The zero value talks to github.com over REST.
type Options struct {
	// BaseURL is a GitHub Enterprise REST endpoint such as https://ghe.example.com/api/v3/.
	BaseURL string
	// MetadataBackend selects how repositories are resolved: BackendREST or BackendGraphQL.
	MetadataBackend string
	// SingleSleepLimit caps a single secondary rate limit sleep inside the transport.
	SingleSleepLimit time.Duration
}

// GitHubGateway is the concrete implementation of the Searcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	backend       string
	logger        *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, opts Options, logger *log.Logger) (Searcher, error) {
	backend := opts.MetadataBackend
	if backend == "" {
		backend = BackendREST
	}
	if backend != BackendREST && backend != BackendGraphQL {
		return nil, fmt.Errorf("unknown metadata backend %q", backend)
	}
	sleepLimit := opts.SingleSleepLimit
	if sleepLimit <= 0 {
		sleepLimit = time.Hour
	}

	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(sleepLimit, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	graphqlClient := githubv4.NewClient(httpClient)
	if opts.BaseURL != "" {
		restClient, err = restClient.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise URL: %w", err)
		}
		graphqlClient = githubv4.NewEnterpriseClient(graphqlEndpoint(opts.BaseURL), httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		backend:       backend,
		logger:        logger,
	}, nil
}

// graphqlEndpoint derives the GraphQL URL of a GitHub Enterprise host from its REST base URL.
func graphqlEndpoint(restBaseURL string) string {
	u := strings.TrimSuffix(restBaseURL, "/")
	u = strings.TrimSuffix(u, "/v3")
	if !strings.HasSuffix(u, "/api") {
		u += "/api"
	}
	return u + "/graphql"
}

// SearchCode runs a code search and returns a lazily paged view of its results.
// The first API page is fetched eagerly so that Total is known.
func (g *GitHubGateway) SearchCode(ctx context.Context, query domain.SearchQuery) (ResultPage, error) {
	g.logger.Info("Searching GitHub code", "query", string(query))
	page := &codeResultPage{
		client: g.restClient,
		query:  string(query),
		logger: g.logger,
	}
	if err := page.load(ctx, 1); err != nil {
		return nil, err
	}
	page.total = page.lastTotal
	g.logger.Infof("Found %d result(s)", page.total)
	return page, nil
}

// Repository resolves a repository reference to its metadata using the configured backend.
func (g *GitHubGateway) Repository(ctx context.Context, ref domain.RepositoryRef) (*domain.RepositoryMetadata, error) {
	if g.backend == BackendGraphQL {
		return g.repositoryGraphQL(ctx, ref)
	}
	repo, _, err := g.restClient.Repositories.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %d with REST API: %w", ref.ID, classifyREST(err))
	}
	return &domain.RepositoryMetadata{
		FullName: repo.GetFullName(),
		Stars:    repo.GetStargazersCount(),
	}, nil
}

// codeResultPage keeps only the most recently loaded API page, since results are read in ascending order.
type codeResultPage struct {
	client    *github.Client
	query     string
	total     int
	lastTotal int
	pageNum   int
	entries   []domain.ResultEntry
	logger    *log.Logger
}

func (p *codeResultPage) Total() int { return p.total }

func (p *codeResultPage) Entry(ctx context.Context, index int) (domain.ResultEntry, error) {
	if index < 0 || index >= p.total {
		return domain.ResultEntry{}, fmt.Errorf("result index %d out of range [0, %d)", index, p.total)
	}
	want := index/searchPageSize + 1
	if want != p.pageNum {
		p.logger.Debug("Fetching next page of code search results...", "page", want)
		if err := p.load(ctx, want); err != nil {
			return domain.ResultEntry{}, err
		}
	}
	offset := index % searchPageSize
	if offset >= len(p.entries) {
		return domain.ResultEntry{}, fmt.Errorf("result index %d not served by GitHub (page %d has %d item(s))", index, p.pageNum, len(p.entries))
	}
	return p.entries[offset], nil
}

func (p *codeResultPage) load(ctx context.Context, pageNum int) error {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{Page: pageNum, PerPage: searchPageSize}}
	result, _, err := p.client.Search.Code(ctx, p.query, opts)
	if err != nil {
		return fmt.Errorf("failed to search code with REST API: %w", classifyREST(err))
	}
	entries := make([]domain.ResultEntry, 0, len(result.CodeResults))
	for _, code := range result.CodeResults {
		repo := code.GetRepository()
		entries = append(entries, domain.ResultEntry{
			URL: code.GetHTMLURL(),
			Repository: domain.RepositoryRef{
				ID:       repo.GetID(),
				FullName: repo.GetFullName(),
			},
		})
	}
	p.pageNum = pageNum
	p.entries = entries
	p.lastTotal = result.GetTotal()
	return nil
}

// classifyREST marks go-github rate limit errors with ErrRateLimited.
func classifyREST(err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return err
}
