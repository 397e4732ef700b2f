package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
)

type productRepo struct {
	db DB
}

func NewProductRepository(db DB) ProductRepository {
	return &productRepo{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const productColumns = `
	product_id,
	name,
	price,
	description,
	stock,
	image,
	created_at,
	updated_at`

func scanProduct(row scanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ProductID,
		&p.Name,
		&p.Price,
		&p.Description,
		&p.Stock,
		&p.Image,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]models.Product, error) {
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name required", ErrInvalidInput)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: product price cannot be negative", ErrInvalidInput)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: product stock cannot be negative", ErrInvalidInput)
	}
	return nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	sql := `
		INSERT INTO products (
			name,
			price,
			description,
			stock,
			image,
			created_at,
			updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING product_id
	`

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	err := r.db.QueryRow(ctx, sql,
		p.Name,
		p.Price,
		p.Description,
		p.Stock,
		p.Image,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ProductID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + productColumns + ` FROM products WHERE product_id = $1`

	product, err := scanProduct(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by id %d: %w", id, err)
	}

	return product, nil
}

func (r *productRepo) GetPage(ctx context.Context, page, perPage int) ([]models.Product, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, fmt.Errorf("%w: page and page size must be positive", ErrInvalidInput)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	sql := `SELECT` + productColumns + `
	FROM products
	ORDER BY product_id
	LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, sql, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get products page %d: %w", page, err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepo) GetAll(ctx context.Context, filter StockFilter) ([]models.Product, error) {
	sql := `SELECT` + productColumns + ` FROM products`

	switch filter {
	case StockAny:
	case StockInStock:
		sql += ` WHERE stock > 0`
	case StockSoldOut:
		sql += ` WHERE stock = 0`
	default:
		return nil, fmt.Errorf("%w: unknown stock filter '%s'", ErrInvalidInput, filter)
	}
	sql += ` ORDER BY product_id`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}

	return collectProducts(rows)
}

func (r *productRepo) SearchByName(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Product{}, nil
	}

	sql := `SELECT` + productColumns + `
	FROM products
	WHERE name ILIKE '%' || $1 || '%'
	ORDER BY product_id`

	rows, err := r.db.Query(ctx, sql, escapeLike(query))
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return collectProducts(rows)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Update writes the product and records an adjustment operation when the
// stock count changed.
func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if p.ProductID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldStock int
	err = tx.QueryRow(ctx, `SELECT stock FROM products WHERE product_id = $1 FOR UPDATE`, p.ProductID).Scan(&oldStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock product %d: %w", p.ProductID, err)
	}

	sql := `
	UPDATE products
	SET
		name = $1,
		price = $2,
		description = $3,
		stock = $4,
		image = $5,
		updated_at = $6
	WHERE product_id = $7
	RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, sql,
		p.Name,
		p.Price,
		p.Description,
		p.Stock,
		p.Image,
		time.Now(),
		p.ProductID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ProductID, err)
	}

	if change := p.Stock - oldStock; change != 0 {
		err = NewOperationRepository(tx).Create(ctx, &models.Operation{
			ProductID:     p.ProductID,
			OperationType: models.OperationAdjustment,
			ChangeQuant:   change,
		})
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
