package usecase

import (
	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/github-search/internal/domain"
)

// Summary describes the accepted results of one keyword. Star statistics
// only cover results whose metadata was fetched.
type Summary struct {
	Accepted    int
	RateLimited int
	MinStars    float64
	MaxStars    float64
	MedianStars float64
	MeanStars   float64
}

// Summarize computes a Summary for results.
func Summarize(results []domain.AcceptedResult) Summary {
	s := Summary{Accepted: len(results)}
	var stars stats.Float64Data
	for _, r := range results {
		if r.RateLimited {
			s.RateLimited++
			continue
		}
		stars = append(stars, float64(r.Stars))
	}
	if stars.Len() == 0 {
		return s
	}
	// Errors are only returned for empty input.
	s.MinStars, _ = stars.Min()
	s.MaxStars, _ = stars.Max()
	s.MedianStars, _ = stars.Median()
	s.MeanStars, _ = stars.Mean()
	return s
}
