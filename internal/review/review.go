package review

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
)

type Catalog interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
}

type Service struct {
	reviews repository.ReviewRepository
	catalog Catalog
	logger  *zap.Logger
}

func NewService(reviews repository.ReviewRepository, catalog Catalog, logger *zap.Logger) *Service {
	return &Service{reviews: reviews, catalog: catalog, logger: logger}
}

// Submit stores a rating. A user may review the same product any number of times.
func (s *Service) Submit(ctx context.Context, productID, userID, stars int, comment string) (*models.Review, error) {
	if stars < 1 || stars > 5 {
		return nil, fmt.Errorf("%w: stars must be between 1 and 5", repository.ErrInvalidInput)
	}

	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	rv := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Stars:     stars,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}

	s.logger.Info("review submitted",
		zap.Int("review_id", rv.ReviewID),
		zap.Int("product_id", productID),
		zap.Int("stars", stars),
	)

	return rv, nil
}

// ForProduct returns the product's reviews newest first with their average.
func (s *Service) ForProduct(ctx context.Context, productID int) ([]models.Review, float64, error) {
	reviews, err := s.reviews.GetByProductID(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	return reviews, Average(reviews), nil
}

// Average is the mean star rating rounded to one decimal, or 0 without reviews.
func Average(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}

	total := 0
	for _, r := range reviews {
		total += r.Stars
	}

	mean := float64(total) / float64(len(reviews))
	// ties on the exact binary value of the mean round to even
	exact, err := decimal.NewFromString(new(big.Float).SetFloat64(mean).Text('f', 64))
	if err != nil {
		return 0
	}
	return exact.RoundBank(1).InexactFloat64()
}
