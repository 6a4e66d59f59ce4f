package usecase

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultKeywords is searched when nothing else is configured.
const DefaultKeywords = "partial( NOT is:fork language:Python"

// ErrInvalidKeywords is returned for keyword input that cannot be searched.
var ErrInvalidKeywords = errors.New("invalid keywords")

// ParseKeywords splits a comma separated keyword list and trims every item.
// Empty input and empty items are rejected before any search is started.
func ParseKeywords(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: no keyword given", ErrInvalidKeywords)
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for i, p := range parts {
		k := strings.TrimSpace(p)
		if k == "" {
			return nil, fmt.Errorf("%w: keyword %d of %q is empty", ErrInvalidKeywords, i+1, raw)
		}
		keywords = append(keywords, k)
	}
	return keywords, nil
}
