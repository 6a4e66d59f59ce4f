package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/naka-gawa/github-search/internal/domain"
	"github.com/shurcooL/githubv4"
)

// repositoryQuery fetches the star count of a single repository.
type repositoryQuery struct {
	Repository struct {
		NameWithOwner  string
		StargazerCount int
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func (g *GitHubGateway) repositoryGraphQL(ctx context.Context, ref domain.RepositoryRef) (*domain.RepositoryMetadata, error) {
	owner, name, ok := strings.Cut(ref.FullName, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository name %q", ref.FullName)
	}
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
	}
	var q repositoryQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for repository %s: %w", ref.FullName, classifyGraphQL(err))
	}
	return &domain.RepositoryMetadata{
		FullName: q.Repository.NameWithOwner,
		Stars:    q.Repository.StargazerCount,
	}, nil
}

// classifyGraphQL marks rate limit failures with ErrRateLimited. The GraphQL
// client only exposes error messages, so matching is done on text.
func classifyGraphQL(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limited") {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return err
}
