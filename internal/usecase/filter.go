package usecase

import "github.com/naka-gawa/github-search/internal/domain"

// DefaultMinStars is the star threshold a repository has to exceed.
const DefaultMinStars = 100

// PopularityFilter keeps repositories with strictly more than MinStars stars.
type PopularityFilter struct {
	MinStars int
}

// Accepts reports whether md is popular enough to be reported.
func (f PopularityFilter) Accepts(md domain.RepositoryMetadata) bool {
	return md.Stars > f.MinStars
}
