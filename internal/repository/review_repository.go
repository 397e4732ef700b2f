package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
)

type reviewRepo struct {
	db DB
}

func NewReviewRepository(db DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, rv *models.Review) error {
	if rv.ProductID <= 0 || rv.UserID <= 0 {
		return fmt.Errorf("%w: product and user are required", ErrInvalidInput)
	}
	if rv.Stars < 1 || rv.Stars > 5 {
		return fmt.Errorf("%w: stars must be between 1 and 5", ErrInvalidInput)
	}

	sql := `INSERT INTO reviews (product_id, user_id, stars, comment, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING review_id`

	rv.CreatedAt = time.Now()

	err := r.db.QueryRow(ctx, sql, rv.ProductID, rv.UserID, rv.Stars, rv.Comment, rv.CreatedAt).Scan(&rv.ReviewID)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// GetByProductID returns reviews newest first.
func (r *reviewRepo) GetByProductID(ctx context.Context, productID int) ([]models.Review, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT
		rv.review_id,
		rv.product_id,
		rv.user_id,
		u.username,
		rv.stars,
		rv.comment,
		rv.created_at
		FROM reviews rv
		JOIN users u ON u.user_id = rv.user_id
		WHERE rv.product_id = $1
		ORDER BY rv.created_at DESC, rv.review_id DESC`

	rows, err := r.db.Query(ctx, sql, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews for product %d: %w", productID, err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var rv models.Review
		err := rows.Scan(
			&rv.ReviewID,
			&rv.ProductID,
			&rv.UserID,
			&rv.Username,
			&rv.Stars,
			&rv.Comment,
			&rv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reviews: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return reviews, nil
}
