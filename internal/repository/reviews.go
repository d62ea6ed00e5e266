package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront/internal/model"
)

// CreateReview сохраняет отзыв о точке. На один заказ допускается один отзыв.
func (r *PostgresRepository) CreateReview(ctx context.Context, rv model.Review) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reviews (outlet_id, user_id, order_id, rating, comment)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rv.OutletID, rv.UserID, rv.OrderID, rv.Rating, rv.Comment,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrReviewExists
		}
		return 0, fmt.Errorf("insert review: %w", err)
	}
	return id, nil
}

// ListReviews возвращает отзывы о точке, новые первыми.
func (r *PostgresRepository) ListReviews(ctx context.Context, outletID int64) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, outlet_id, user_id, order_id, rating, comment, created_at
		 FROM reviews
		 WHERE outlet_id = $1
		 ORDER BY created_at DESC`,
		outletID,
	)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}

	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Review, error) {
		var rv model.Review
		err := row.Scan(&rv.ID, &rv.OutletID, &rv.UserID, &rv.OrderID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
		return rv, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect reviews: %w", err)
	}
	return res, nil
}
