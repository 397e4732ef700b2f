package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
)

type orderRepo struct {
	db DB
}

func NewOrderRepository(db DB) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `
	order_id,
	user_id,
	created_at,
	total_paid,
	status,
	address,
	city,
	postal_code,
	phone,
	shipping_cost,
	COALESCE(payment_ref, '')`

func scanOrder(row scanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.OrderID,
		&o.UserID,
		&o.CreatedAt,
		&o.TotalPaid,
		&o.Status,
		&o.Address,
		&o.City,
		&o.PostalCode,
		&o.Phone,
		&o.ShippingCost,
		&o.PaymentRef,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder inserts the order, decrements stock and inserts the lines in a
// single transaction. Stock never goes below zero: a line asking for more than
// is left takes whatever remains, and the shortfall shows up in the returned
// StockChange. Lines whose product no longer exists are stored without a
// product reference.
func (r *orderRepo) CreateOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) ([]models.StockChange, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: order cannot be nil", ErrInvalidInput)
	}

	if order.UserID <= 0 {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("order lines cannot be empty: %w", ErrInvalidInput)
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
		}
		if line.Price.IsNegative() {
			return nil, fmt.Errorf("price cannot be negative: %w", ErrInvalidInput)
		}
	}

	if order.Status == "" {
		order.Status = models.OrderPaid
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var paymentRef any
	if order.PaymentRef != "" {
		paymentRef = order.PaymentRef
	}

	insert := `INSERT INTO orders (
	user_id,
	created_at,
	total_paid,
	status,
	address,
	city,
	postal_code,
	phone,
	shipping_cost,
	payment_ref
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING order_id
	`

	order.CreatedAt = time.Now()

	err = tx.QueryRow(ctx, insert,
		order.UserID,
		order.CreatedAt,
		order.TotalPaid,
		order.Status,
		order.Address,
		order.City,
		order.PostalCode,
		order.Phone,
		order.ShippingCost,
		paymentRef,
	).Scan(&order.OrderID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: order for payment %s already exists", ErrDuplicate, order.PaymentRef)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// lock rows in id order so concurrent orders can't deadlock
	byProduct := make([]int, 0, len(lines))
	for i := range lines {
		if lines[i].ProductID != nil {
			byProduct = append(byProduct, i)
		}
	}
	sort.SliceStable(byProduct, func(a, b int) bool {
		return *lines[byProduct[a]].ProductID < *lines[byProduct[b]].ProductID
	})

	operations := NewOperationRepository(tx)
	var changes []models.StockChange

	for _, i := range byProduct {
		line := &lines[i]
		productID := *line.ProductID

		var before int
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE product_id = $1 FOR UPDATE`, productID).Scan(&before)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				line.ProductID = nil
				continue
			}
			return nil, fmt.Errorf("failed to lock product %d: %w", productID, err)
		}

		update := `UPDATE products
		SET stock = GREATEST(stock - $1, 0), updated_at = $2
		WHERE product_id = $3
		RETURNING stock`

		var after int
		if err := tx.QueryRow(ctx, update, line.Quantity, time.Now(), productID).Scan(&after); err != nil {
			return nil, fmt.Errorf("failed to update products %d: %w", productID, err)
		}

		changes = append(changes, models.StockChange{
			ProductID: productID,
			Before:    before,
			After:     after,
			Requested: line.Quantity,
		})

		if after != before {
			err = operations.Create(ctx, &models.Operation{
				ProductID:     productID,
				OrderID:       &order.OrderID,
				OperationType: models.OperationOutgoing,
				ChangeQuant:   after - before,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	insertLine := `INSERT INTO order_lines (order_id, product_id, product_name, price, quantity)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING order_line_id
	`

	for i := range lines {
		line := &lines[i]
		line.OrderID = order.OrderID

		err := tx.QueryRow(ctx, insertLine,
			line.OrderID,
			line.ProductID,
			line.ProductName,
			line.Price,
			line.Quantity,
		).Scan(&line.OrderLineID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return changes, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int) (*models.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE order_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	return order, nil
}

func (r *orderRepo) GetByPaymentRef(ctx context.Context, ref string) (*models.Order, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: payment reference cannot be empty", ErrInvalidInput)
	}

	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE payment_ref = $1`, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order by payment %s: %w", ref, err)
	}

	return order, nil
}

func (r *orderRepo) GetAll(ctx context.Context) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT`+orderColumns+` FROM orders ORDER BY created_at DESC, order_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}

	return collectOrders(rows)
}

// UpdateStatus stores the new status and returns the one it replaced.
func (r *orderRepo) UpdateStatus(ctx context.Context, id int, status models.OrderStatus) (models.OrderStatus, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	if status == "" {
		return "", fmt.Errorf("%w: Status cannot be empty", ErrInvalidInput)
	}

	if !status.Valid() {
		return "", fmt.Errorf("%w: invalid status '%s'", ErrInvalidInput, status)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var previous models.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE order_id = $1 FOR UPDATE`, id).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("lock order %d: %w", id, err)
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $1 WHERE order_id = $2`, status, id); err != nil {
		return "", fmt.Errorf("update status order %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return previous, nil
}

const orderWithLinesColumns = `
	o.order_id,
	o.user_id,
	o.created_at,
	o.total_paid,
	o.status,
	o.address,
	o.city,
	o.postal_code,
	o.phone,
	o.shipping_cost,
	COALESCE(o.payment_ref, ''),
	ol.order_line_id,
	ol.product_id,
	ol.product_name,
	ol.price,
	ol.quantity`

func (r *orderRepo) GetOrderWithLines(ctx context.Context, id int) (*models.OrderWithLines, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT` + orderWithLinesColumns + `
	FROM orders o
	LEFT JOIN order_lines ol ON o.order_id = ol.order_id
	WHERE o.order_id = $1
	ORDER BY ol.order_line_id
	`

	rows, err := r.db.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order with lines %d: %w", id, err)
	}

	result, err := collectOrdersWithLines(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return &result[0], nil
}

// GetByUserID returns the user's orders newest first, each with its lines.
func (r *orderRepo) GetByUserID(ctx context.Context, userID int) ([]models.OrderWithLines, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT` + orderWithLinesColumns + `
		FROM orders o
		LEFT JOIN order_lines ol ON o.order_id = ol.order_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.order_id DESC, ol.order_line_id`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders by userID %d: %w", userID, err)
	}

	return collectOrdersWithLines(rows)
}

// collectOrdersWithLines groups joined order/line rows per order. Rows of one
// order must be adjacent.
func collectOrdersWithLines(rows pgx.Rows) ([]models.OrderWithLines, error) {
	defer rows.Close()

	result := []models.OrderWithLines{}

	for rows.Next() {
		var o models.Order
		var lineID pgtype.Int4
		var productID pgtype.Int4
		var productName pgtype.Text
		var price decimal.NullDecimal
		var quantity pgtype.Int4

		err := rows.Scan(
			&o.OrderID,
			&o.UserID,
			&o.CreatedAt,
			&o.TotalPaid,
			&o.Status,
			&o.Address,
			&o.City,
			&o.PostalCode,
			&o.Phone,
			&o.ShippingCost,
			&o.PaymentRef,
			&lineID,
			&productID,
			&productName,
			&price,
			&quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order/line: %w", err)
		}
		if len(result) == 0 || result[len(result)-1].OrderID != o.OrderID {
			result = append(result, models.OrderWithLines{Order: o, Lines: []models.OrderLine{}})
		}
		if lineID.Valid {
			line := models.OrderLine{
				OrderLineID: int(lineID.Int32),
				OrderID:     o.OrderID,
				ProductName: productName.String,
				Price:       price.Decimal,
				Quantity:    int(quantity.Int32),
			}
			if productID.Valid {
				pid := int(productID.Int32)
				line.ProductID = &pid
			}
			current := &result[len(result)-1]
			current.Lines = append(current.Lines, line)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

func collectOrders(rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan orders: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return orders, nil
}
