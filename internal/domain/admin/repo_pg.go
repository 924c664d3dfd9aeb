package admin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) Create(ctx context.Context, a *Admin) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO admin (id, username, password_hash)
		VALUES ($1,$2,$3)`,
		a.ID, a.Username, a.PasswordHash)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.E(apperr.KindConflict, "admin username already taken")
	}
	return err
}

func (r *repoPG) GetByUsername(ctx context.Context, username string) (*Admin, error) {
	var a Admin
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM admin WHERE username = $1`, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "admin not found")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM admin WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}
