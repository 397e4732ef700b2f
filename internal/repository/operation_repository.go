package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
)

type operationRepo struct {
	db DB
}

func NewOperationRepository(db DB) OperationRepository {
	return &operationRepo{db: db}
}

var validOperationTypes = map[string]bool{
	models.OperationOutgoing:   true,
	models.OperationAdjustment: true,
}

func (r *operationRepo) Create(ctx context.Context, o *models.Operation) error {
	if o == nil {
		return fmt.Errorf("%w: operation cannot be nil", ErrInvalidInput)
	}
	if o.ProductID <= 0 {
		return fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
	}
	if o.ChangeQuant == 0 {
		return fmt.Errorf("%w: the variable quantity cannot be 0", ErrInvalidInput)
	}
	if !validOperationTypes[o.OperationType] {
		return fmt.Errorf("%w: invalid operation type '%s'", ErrInvalidInput, o.OperationType)
	}

	var orderID any
	if o.OrderID != nil && *o.OrderID > 0 {
		orderID = *o.OrderID
	}

	sql := ` INSERT INTO operations (
		product_id,
		order_id,
		operation_type,
		change_quant,
		created_at
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING operation_id
	`

	o.CreatedAt = time.Now()

	err := r.db.QueryRow(ctx, sql,
		o.ProductID,
		orderID,
		o.OperationType,
		o.ChangeQuant,
		o.CreatedAt,
	).Scan(&o.OperationID)
	if err != nil {
		return fmt.Errorf("failed to create operation: %w", err)
	}
	return nil
}

func (r *operationRepo) GetByProductID(ctx context.Context, productID int) ([]models.Operation, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT
		operation_id,
		product_id,
		order_id,
		operation_type,
		change_quant,
		created_at
		FROM operations
		WHERE product_id = $1
		ORDER BY operation_id
		`
	rows, err := r.db.Query(ctx, sql, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operations by product ID %d: %w", productID, err)
	}

	return collectOperations(rows)
}

func (r *operationRepo) GetByOrderID(ctx context.Context, orderID int) ([]models.Operation, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := ` SELECT
		operation_id,
		product_id,
		order_id,
		operation_type,
		change_quant,
		created_at
		FROM operations
		WHERE order_id = $1
		ORDER BY operation_id
		`

	rows, err := r.db.Query(ctx, sql, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operations by order ID: %w", err)
	}

	return collectOperations(rows)
}

func collectOperations(rows pgx.Rows) ([]models.Operation, error) {
	defer rows.Close()

	operations := []models.Operation{}
	for rows.Next() {
		var o models.Operation
		err := rows.Scan(
			&o.OperationID,
			&o.ProductID,
			&o.OrderID,
			&o.OperationType,
			&o.ChangeQuant,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operations: %w", err)
		}
		operations = append(operations, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete rows iteration: %w", err)
	}

	return operations, nil
}
