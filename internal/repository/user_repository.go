package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
)

const uniqueViolation = "23505"

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `
	user_id,
	username,
	email,
	first_name,
	last_name,
	password_hash,
	is_staff,
	registered_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&u.IsStaff,
		&u.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func duplicateUserErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "username") {
			return fmt.Errorf("%w: username already exists", ErrDuplicate)
		}
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if u.Username == "" || u.Email == "" || u.PasswordHash == "" {
		return fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}

	sql := `
		INSERT INTO users (
			username,
			email,
			first_name,
			last_name,
			password_hash,
			is_staff,
			registered_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING user_id
	`

	u.RegisteredAt = time.Now()

	err := r.db.QueryRow(ctx, sql,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
		u.IsStaff,
		u.RegisteredAt,
	).Scan(&u.UserID)
	if err != nil {
		if dupErr := duplicateUserErr(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	user, err := scanUser(r.db.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE user_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user with id %d: %w", id, err)
	}

	return user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", ErrInvalidInput)
	}

	user, err := scanUser(r.db.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}

	return user, nil
}

func (r *userRepo) Update(ctx context.Context, u *models.User) error {
	if u.UserID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `
	UPDATE users
	SET
		username = $1,
		email = $2,
		first_name = $3,
		last_name = $4
	WHERE user_id = $5
	`

	result, err := r.db.Exec(ctx, sql, u.Username, u.Email, u.FirstName, u.LastName, u.UserID)
	if err != nil {
		if dupErr := duplicateUserErr(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("failed to update user %d: %w", u.UserID, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
