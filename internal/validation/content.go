// Package validation provides input validation utilities
package validation

import (
	"strings"
	"unicode/utf8"

	"tidepool/internal/models"
)

// ContentPolicy holds per-plan-tier content limits. Zero values fall back
// to DefaultContentPolicy.
type ContentPolicy struct {
	FreeMaxLen int
	PlusMaxLen int
}

// DefaultContentPolicy is used when no policy is configured.
var DefaultContentPolicy = ContentPolicy{
	FreeMaxLen: 2000,
	PlusMaxLen: 10000,
}

// MaxLenFor returns the maximum content length for the given plan tier.
func (p ContentPolicy) MaxLenFor(tier models.PlanTier) int {
	limit := p.FreeMaxLen
	if tier == models.PlanTierPlus {
		limit = p.PlusMaxLen
	}
	if limit <= 0 {
		if tier == models.PlanTierPlus {
			return DefaultContentPolicy.PlusMaxLen
		}
		return DefaultContentPolicy.FreeMaxLen
	}
	return limit
}

// ValidateContent checks that a content field is non-empty after trimming
// and within the tier's length limit. The returned error names the field.
func (p ContentPolicy) ValidateContent(field, content string, tier models.PlanTier) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError(field + " is required")
	}
	if max := p.MaxLenFor(tier); utf8.RuneCountInString(content) > max {
		return models.NewValidationError(field + " exceeds the maximum length for your plan")
	}
	return nil
}
