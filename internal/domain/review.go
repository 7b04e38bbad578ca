package domain

import (
	"strings"
	"time"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
)

// Review is a comment left on an ad.
type Review struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	AdID      int64     `json:"ad_id"`
	AuthorID  *int64    `json:"author_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	minReviewTextLen = 2
	maxReviewTextLen = 1000
)

// forbiddenReviewWords are rejected anywhere in the review text,
// case-insensitively.
var forbiddenReviewWords = []string{
	"casino",
	"cryptocurrency",
	"crypto",
}

// ValidateReviewText enforces the length bounds and the forbidden-word list.
func ValidateReviewText(text string) error {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < minReviewTextLen {
		return apperrors.InvalidInput("text must be at least 2 characters")
	}
	if len([]rune(trimmed)) > maxReviewTextLen {
		return apperrors.InvalidInput("text must not exceed 1000 characters")
	}
	lower := strings.ToLower(trimmed)
	for _, word := range forbiddenReviewWords {
		if strings.Contains(lower, word) {
			return apperrors.InvalidInput("text contains a forbidden word: " + word)
		}
	}
	return nil
}
