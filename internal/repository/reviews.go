package repository

import (
	"context"
	"database/sql"

	"github.com/giftchoice/storefront/internal/domain"
)

// CreateReview stores a product review.
func (s *SQLStore) CreateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO reviews (id, product_id, name, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID, review.ProductID, review.Name, review.Rating, nullString(review.Comment), review.CreatedAt)
	return err
}

// ListReviews lists a product's reviews newest first.
func (s *SQLStore) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT id, product_id, name, rating, comment, created_at FROM reviews
		WHERE product_id = ? ORDER BY created_at DESC, id ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var r domain.Review
		var comment sql.NullString
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Name, &r.Rating, &comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Comment = comment.String
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// DeleteReview deletes a review.
func (s *SQLStore) DeleteReview(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx, s.db, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}
