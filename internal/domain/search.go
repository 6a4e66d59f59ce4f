// Package domain contains the core data structures and domain logic for the application.
package domain

// SearchQuery is the free-text query submitted to the code search backend.
type SearchQuery string

// RepositoryRef identifies the repository a search result belongs to.
type RepositoryRef struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}

// ResultEntry is a single code search hit.
type ResultEntry struct {
	URL        string        `json:"url"`
	Repository RepositoryRef `json:"repository"`
}

// RepositoryMetadata holds the repository details resolved for a ResultEntry.
type RepositoryMetadata struct {
	FullName string `json:"full_name"`
	Stars    int    `json:"stars"`
}

// AcceptedResult is a search hit that made it into the report.
// RateLimited marks results recorded without metadata, in which case Stars is zero.
type AcceptedResult struct {
	URL         string `json:"url"`
	FullName    string `json:"full_name"`
	Stars       int    `json:"stars"`
	RateLimited bool   `json:"rate_limited"`
}

// ResultsByKeyword maps each queried keyword to its accepted results.
// Keywords keep the order in which they were first set.
type ResultsByKeyword struct {
	keywords []string
	results  map[string][]AcceptedResult
}

// NewResultsByKeyword returns an empty mapping.
func NewResultsByKeyword() *ResultsByKeyword {
	return &ResultsByKeyword{results: make(map[string][]AcceptedResult)}
}

// Set stores the results for keyword. Setting a keyword again replaces its
// results but keeps its original position.
func (r *ResultsByKeyword) Set(keyword string, results []AcceptedResult) {
	if _, ok := r.results[keyword]; !ok {
		r.keywords = append(r.keywords, keyword)
	}
	r.results[keyword] = results
}

// Keywords returns the keywords in insertion order.
func (r *ResultsByKeyword) Keywords() []string {
	return append([]string(nil), r.keywords...)
}

// Get returns the results stored for keyword.
func (r *ResultsByKeyword) Get(keyword string) []AcceptedResult {
	return r.results[keyword]
}

// All flattens the mapping in keyword order, then accumulation order.
func (r *ResultsByKeyword) All() []AcceptedResult {
	all := make([]AcceptedResult, 0, r.Len())
	for _, k := range r.keywords {
		all = append(all, r.results[k]...)
	}
	return all
}

// Len returns the total number of results across keywords.
func (r *ResultsByKeyword) Len() int {
	n := 0
	for _, k := range r.keywords {
		n += len(r.results[k])
	}
	return n
}
