package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
)

// DB is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type StockFilter string

const (
	StockAny     StockFilter = ""
	StockInStock StockFilter = "in"
	StockSoldOut StockFilter = "out"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int) (*models.Product, error)
	GetPage(ctx context.Context, page, perPage int) ([]models.Product, int, error)
	GetAll(ctx context.Context, filter StockFilter) ([]models.Product, error)
	SearchByName(ctx context.Context, query string) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id int) (*models.Coupon, error)
	GetActiveByID(ctx context.Context, id int) (*models.Coupon, error)
	GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
	GetAll(ctx context.Context) ([]models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id int) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) ([]models.StockChange, error)
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetByPaymentRef(ctx context.Context, ref string) (*models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int, status models.OrderStatus) (models.OrderStatus, error)

	GetByUserID(ctx context.Context, userID int) ([]models.OrderWithLines, error)
	GetOrderWithLines(ctx context.Context, id int) (*models.OrderWithLines, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByProductID(ctx context.Context, productID int) ([]models.Review, error)
}

type OperationRepository interface {
	Create(ctx context.Context, operation *models.Operation) error
	GetByProductID(ctx context.Context, productID int) ([]models.Operation, error)
	GetByOrderID(ctx context.Context, orderID int) ([]models.Operation, error)
}
