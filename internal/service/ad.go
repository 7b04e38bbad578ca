package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"

	"github.com/Altair788/DigitalBazaar/internal/cache"
	"github.com/Altair788/DigitalBazaar/internal/domain"
	"github.com/Altair788/DigitalBazaar/internal/repository"
)

// AdListCache caches entire listing pages keyed by their filter and page.
// A nil implementation disables caching.
type AdListCache interface {
	Get(ctx context.Context, key string) ([]domain.Ad, int64, error)
	Set(ctx context.Context, key string, ads []domain.Ad, total int64) error
	Invalidate(ctx context.Context) error
}

// AdService implements the business logic for classified ads.
type AdService struct {
	adRepo repository.AdRepository
	cache  AdListCache
	logger *slog.Logger
}

// NewAdService creates a new ad service. cache may be nil.
func NewAdService(adRepo repository.AdRepository, cache AdListCache, logger *slog.Logger) *AdService {
	return &AdService{
		adRepo: adRepo,
		cache:  cache,
		logger: logger,
	}
}

// CreateAdInput holds the parameters for creating an ad.
type CreateAdInput struct {
	Title       string
	Price       int64
	Description string
	ImageURL    string
}

// UpdateAdInput holds the parameters for a partial ad update.
type UpdateAdInput struct {
	Title       *string
	Price       *int64
	Description *string
	ImageURL    *string
}

// CreateAd validates and persists a new ad authored by the caller.
func (s *AdService) CreateAd(ctx context.Context, authorID int64, input CreateAdInput) (*domain.Ad, error) {
	if err := domain.ValidateAdTitle(input.Title); err != nil {
		return nil, err
	}
	if err := domain.ValidateAdPrice(input.Price); err != nil {
		return nil, err
	}
	if err := domain.ValidateAdDescription(input.Description); err != nil {
		return nil, err
	}
	if input.ImageURL != "" {
		if err := domain.ValidateAdImageURL(input.ImageURL); err != nil {
			return nil, err
		}
	}

	ad := &domain.Ad{
		Title:       input.Title,
		Price:       input.Price,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		AuthorID:    authorID,
	}

	if err := s.adRepo.Create(ctx, ad); err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}

	s.invalidateListings(ctx)

	s.logger.InfoContext(ctx, "ad created",
		slog.Int64("ad_id", ad.ID),
		slog.Int64("author_id", authorID),
	)

	return ad, nil
}

// ListAds returns ads matching the filter, newest first. Listing pages are
// served from cache when possible; cache failures fall through to the store.
func (s *AdService) ListAds(ctx context.Context, f repository.AdFilter, p pagination.Params) ([]domain.Ad, int64, error) {
	key := fmt.Sprintf("title=%s:author=%d:page=%d:per=%d", f.Title, f.AuthorID, p.Page, p.PerPage)

	if s.cache != nil {
		ads, total, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			return ads, total, nil
		case !errors.Is(err, cache.ErrMiss):
			s.logger.WarnContext(ctx, "ad listing cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	ads, total, err := s.adRepo.List(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list ads: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, ads, total); err != nil {
			s.logger.WarnContext(ctx, "ad listing cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return ads, total, nil
}

// GetAd retrieves an ad by ID.
func (s *AdService) GetAd(ctx context.Context, id int64) (*domain.Ad, error) {
	ad, err := s.adRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ad: %w", err)
	}
	return ad, nil
}

// UpdateAd applies a partial update. Only the author or an admin may modify
// an ad.
func (s *AdService) UpdateAd(ctx context.Context, actorID int64, actorRole string, id int64, input UpdateAdInput) (*domain.Ad, error) {
	ad, err := s.adRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ad for update: %w", err)
	}

	if ad.AuthorID != actorID && actorRole != domain.RoleAdmin {
		return nil, apperrors.Forbidden("you may only modify your own ads")
	}

	if input.Title != nil {
		if err := domain.ValidateAdTitle(*input.Title); err != nil {
			return nil, err
		}
		ad.Title = *input.Title
	}
	if input.Price != nil {
		if err := domain.ValidateAdPrice(*input.Price); err != nil {
			return nil, err
		}
		ad.Price = *input.Price
	}
	if input.Description != nil {
		if err := domain.ValidateAdDescription(*input.Description); err != nil {
			return nil, err
		}
		ad.Description = *input.Description
	}
	if input.ImageURL != nil {
		if *input.ImageURL != "" {
			if err := domain.ValidateAdImageURL(*input.ImageURL); err != nil {
				return nil, err
			}
		}
		ad.ImageURL = *input.ImageURL
	}

	if err := s.adRepo.Update(ctx, ad); err != nil {
		return nil, fmt.Errorf("update ad: %w", err)
	}

	s.invalidateListings(ctx)

	s.logger.InfoContext(ctx, "ad updated",
		slog.Int64("ad_id", ad.ID),
	)

	return ad, nil
}

// DeleteAd removes an ad. Only the author or an admin may delete it.
func (s *AdService) DeleteAd(ctx context.Context, actorID int64, actorRole string, id int64) error {
	ad, err := s.adRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get ad for delete: %w", err)
	}

	if ad.AuthorID != actorID && actorRole != domain.RoleAdmin {
		return apperrors.Forbidden("you may only delete your own ads")
	}

	if err := s.adRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}

	s.invalidateListings(ctx)

	s.logger.InfoContext(ctx, "ad deleted",
		slog.Int64("ad_id", id),
	)

	return nil
}

func (s *AdService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "ad listing cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}
