package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"

	"github.com/Altair788/DigitalBazaar/internal/domain"
	"github.com/Altair788/DigitalBazaar/internal/repository"
)

// ReviewService implements the business logic for ad reviews.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	adRepo     repository.AdRepository
	logger     *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(reviewRepo repository.ReviewRepository, adRepo repository.AdRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		adRepo:     adRepo,
		logger:     logger,
	}
}

// CreateReview validates and persists a review. Authors may not review their
// own ads.
func (s *ReviewService) CreateReview(ctx context.Context, authorID, adID int64, text string) (*domain.Review, error) {
	if err := domain.ValidateReviewText(text); err != nil {
		return nil, err
	}

	ad, err := s.adRepo.GetByID(ctx, adID)
	if err != nil {
		return nil, fmt.Errorf("get ad for review: %w", err)
	}

	if ad.AuthorID == authorID {
		return nil, apperrors.BusinessRule("you may not review your own ad")
	}

	review := &domain.Review{
		Text:     text,
		AdID:     adID,
		AuthorID: &authorID,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.Int64("review_id", review.ID),
		slog.Int64("ad_id", adID),
		slog.Int64("author_id", authorID),
	)

	return review, nil
}

// ListReviews returns reviews matching the filter, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, f repository.ReviewFilter, p pagination.Params) ([]domain.Review, int64, error) {
	reviews, total, err := s.reviewRepo.List(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

// GetReview retrieves a review by ID.
func (s *ReviewService) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// UpdateReview replaces a review's text. Only the author or an admin may
// modify it.
func (s *ReviewService) UpdateReview(ctx context.Context, actorID int64, actorRole string, id int64, text string) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for update: %w", err)
	}

	if !canModifyReview(review, actorID, actorRole) {
		return nil, apperrors.Forbidden("you may only modify your own reviews")
	}

	if err := domain.ValidateReviewText(text); err != nil {
		return nil, err
	}

	review.Text = text
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.Int64("review_id", review.ID),
	)

	return review, nil
}

// DeleteReview removes a review. Only the author or an admin may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, actorID int64, actorRole string, id int64) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get review for delete: %w", err)
	}

	if !canModifyReview(review, actorID, actorRole) {
		return apperrors.Forbidden("you may only delete your own reviews")
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.Int64("review_id", id),
	)

	return nil
}

// canModifyReview reports whether the actor owns the review or is an admin.
// Reviews whose author account was deleted are admin-only.
func canModifyReview(review *domain.Review, actorID int64, actorRole string) bool {
	if actorRole == domain.RoleAdmin {
		return true
	}
	return review.AuthorID != nil && *review.AuthorID == actorID
}
