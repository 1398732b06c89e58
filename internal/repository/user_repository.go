package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/repository/base"
)

const userColumns = `id, telegram_id, email, name, role, upi_id, upi_payee_name, created_at`

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.UPIID,
		&user.UPIPayeeName,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (telegram_id, email, name, role, upi_id, upi_payee_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.TelegramID,
		user.Email,
		user.Name,
		user.Role,
		user.UPIID,
		user.UPIPayeeName,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID returns the user or nil when it does not exist
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(r.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail returns the user or nil when it does not exist
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

// Update saves name, role, Telegram link and payment details
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET telegram_id = $1, name = $2, role = $3, upi_id = $4, upi_payee_name = $5
		WHERE id = $6
	`

	affected, err := r.ExecAffected(
		ctx, query,
		user.TelegramID,
		user.Name,
		user.Role,
		user.UPIID,
		user.UPIPayeeName,
		user.ID,
	)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("update user: %w", ErrDuplicate)
		}
		return fmt.Errorf("update user: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("update user: user %d not found", user.ID)
	}

	return nil
}

// GetByRole returns all users with the role
func (r *UserRepository) GetByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	rows, err := r.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY id`, role)
	if err != nil {
		return nil, fmt.Errorf("get users by role: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}
