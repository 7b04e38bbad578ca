package domain

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
)

// Ad is a classified-ad listing.
type Ad struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Price       int64     `json:"price"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	AuthorID    int64     `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const maxAdDescriptionLen = 1000

// allowedImageExtensions is the allowlist applied to the image URL path.
var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ValidateAdTitle fails on an empty title or fewer than 2 trimmed characters.
func ValidateAdTitle(title string) error {
	if len(strings.TrimSpace(title)) < 2 {
		return apperrors.InvalidInput("title must be at least 2 characters")
	}
	return nil
}

// ValidateAdPrice fails unless the price is a positive amount.
func ValidateAdPrice(price int64) error {
	if price <= 0 {
		return apperrors.InvalidInput("price must be positive")
	}
	return nil
}

// ValidateAdDescription fails when the description exceeds the length cap.
func ValidateAdDescription(description string) error {
	if len([]rune(description)) > maxAdDescriptionLen {
		return apperrors.InvalidInput(fmt.Sprintf("description must not exceed %d characters", maxAdDescriptionLen))
	}
	return nil
}

// ValidateAdImageURL fails when the URL is unparseable or its path does not
// end in an allowed image extension. An empty URL is accepted.
func ValidateAdImageURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.InvalidInput("image_url must be a valid absolute URL")
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if !allowedImageExtensions[ext] {
		return apperrors.InvalidInput("image_url must point to a jpg, jpeg, png or webp file")
	}
	return nil
}

// ValidateAdPayload checks the fields present in a partial payload, in
// declaration order, returning the first failure.
func ValidateAdPayload(p map[string]any) error {
	if v, ok := p["title"]; ok {
		s, err := stringField("title", v)
		if err != nil {
			return err
		}
		if err := ValidateAdTitle(s); err != nil {
			return err
		}
	}
	if v, ok := p["price"]; ok {
		n, err := integerField("price", v)
		if err != nil {
			return err
		}
		if err := ValidateAdPrice(n); err != nil {
			return err
		}
	}
	if v, ok := p["description"]; ok {
		s, err := stringField("description", v)
		if err != nil {
			return err
		}
		if err := ValidateAdDescription(s); err != nil {
			return err
		}
	}
	if v, ok := p["image_url"]; ok {
		s, err := stringField("image_url", v)
		if err != nil {
			return err
		}
		if err := ValidateAdImageURL(s); err != nil {
			return err
		}
	}
	return nil
}
