package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/giftchoice/storefront/internal/domain"
)

func (s *Service) CreateReview(ctx context.Context, productID string, req *domain.ReviewRequest) (*domain.Review, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.Required("name")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, domain.Invalid("rating", "rating must be between 1 and 5")
	}
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:        newID("rev_"),
		ProductID: productID,
		Name:      strings.TrimSpace(req.Name),
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: timeNow(),
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, errors.Wrap(err, "failed to create review")
	}
	return review, nil
}

func (s *Service) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	reviews, err := s.store.ListReviews(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}
	return reviews, nil
}

func (s *Service) DeleteReview(ctx context.Context, id string) error {
	ok, err := s.store.DeleteReview(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete review")
	}
	if !ok {
		return domain.NotFound("review", id)
	}
	return nil
}

// AverageRating is the mean rating rounded to one decimal place, zero when
// there are no reviews.
func AverageRating(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, r := range reviews {
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(reviews)))).Round(1).InexactFloat64()
}
