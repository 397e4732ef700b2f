package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
)

type couponRepo struct {
	db DB
}

func NewCouponRepository(db DB) CouponRepository {
	return &couponRepo{db: db}
}

func validateCoupon(c *models.Coupon) error {
	if c.Code == "" {
		return fmt.Errorf("%w: coupon code required", ErrInvalidInput)
	}
	if c.Discount < 0 || c.Discount > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *couponRepo) getOne(ctx context.Context, sql string, arg any) (*models.Coupon, error) {
	var c models.Coupon
	err := r.db.QueryRow(ctx, sql, arg).Scan(&c.CouponID, &c.Code, &c.Discount, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &c, nil
}

func (r *couponRepo) Create(ctx context.Context, c *models.Coupon) error {
	if err := validateCoupon(c); err != nil {
		return err
	}

	sql := `INSERT INTO coupons (code, discount, active) VALUES ($1, $2, $3) RETURNING coupon_id`

	err := r.db.QueryRow(ctx, sql, c.Code, c.Discount, c.Active).Scan(&c.CouponID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: coupon code already exists", ErrDuplicate)
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

func (r *couponRepo) GetByID(ctx context.Context, id int) (*models.Coupon, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}
	return r.getOne(ctx, `SELECT coupon_id, code, discount, active FROM coupons WHERE coupon_id = $1`, id)
}

func (r *couponRepo) GetActiveByID(ctx context.Context, id int) (*models.Coupon, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}
	return r.getOne(ctx, `SELECT coupon_id, code, discount, active FROM coupons WHERE coupon_id = $1 AND active`, id)
}

// GetActiveByCode matches the code exactly, case included.
func (r *couponRepo) GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: code cannot be empty", ErrInvalidInput)
	}
	return r.getOne(ctx, `SELECT coupon_id, code, discount, active FROM coupons WHERE code = $1 AND active`, code)
}

func (r *couponRepo) GetAll(ctx context.Context) ([]models.Coupon, error) {
	rows, err := r.db.Query(ctx, `SELECT coupon_id, code, discount, active FROM coupons ORDER BY coupon_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all coupons: %w", err)
	}
	defer rows.Close()

	coupons := []models.Coupon{}
	for rows.Next() {
		var c models.Coupon
		if err := rows.Scan(&c.CouponID, &c.Code, &c.Discount, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan coupons: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return coupons, nil
}

func (r *couponRepo) Update(ctx context.Context, c *models.Coupon) error {
	if err := validateCoupon(c); err != nil {
		return err
	}
	if c.CouponID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `UPDATE coupons SET code = $1, discount = $2, active = $3 WHERE coupon_id = $4`

	result, err := r.db.Exec(ctx, sql, c.Code, c.Discount, c.Active, c.CouponID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: coupon code already exists", ErrDuplicate)
		}
		return fmt.Errorf("failed to update coupon %d: %w", c.CouponID, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *couponRepo) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx, `DELETE FROM coupons WHERE coupon_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
