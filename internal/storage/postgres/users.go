package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type userRepository struct {
	pool *pgxpool.Pool
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	id, err := newID()
	if err != nil {
		return err
	}

	const insertUserQuery = `
INSERT INTO users (id,
                   email,
                   password,
                   is_active,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = r.pool.Exec(
		ctx,
		insertUserQuery,
		id,
		strings.ToLower(user.Email),
		user.Password,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = id
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}

	const selectUserByIDQuery = `
SELECT id,
       email,
       password,
       is_active,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	return scanUser(r.pool.QueryRow(ctx, selectUserByIDQuery, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const selectUserByEmailQuery = `
SELECT id,
       email,
       password,
       is_active,
       created_at,
       updated_at
FROM users
WHERE email = $1
`
	return scanUser(r.pool.QueryRow(ctx, selectUserByEmailQuery, strings.ToLower(email)))
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := new(models.User)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return user, nil
}
