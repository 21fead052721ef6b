package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/viewtube/viewtube/internal/common"
	"github.com/viewtube/viewtube/internal/dbx"
	"github.com/viewtube/viewtube/internal/server/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique-constraint errors.
const uniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, full_name, password_hash, refresh_token,
	avatar_url, cover_image_url, created_at, updated_at`

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.PasswordHash, &user.RefreshToken, &user.AvatarURL,
		&user.CoverImageURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	user.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.FullName,
		user.PasswordHash, user.AvatarURL, user.CoverImageURL).
		Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 OR email = $2`, userColumns)
	return r.scanUser(r.db.QueryRowContext(ctx, query, username, email))
}

func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, id string, token *string) error {
	query := `
		UPDATE users SET refresh_token = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	// The WHERE clause is the compare-and-swap that makes rotation
	// race-safe: two concurrent refreshes with the same stale token cannot
	// both match.
	query := `
		UPDATE users SET refresh_token = $3, updated_at = now()
		WHERE id = $1 AND refresh_token = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, current, next)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	query := `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
