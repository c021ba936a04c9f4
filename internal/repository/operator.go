package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Operator is an account allowed to manage the hospital directory.
type Operator struct {
	ID           string
	Username     string
	PasswordHash string
	DisplayName  string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OperatorRepo handles operator persistence
type OperatorRepo struct {
	pool DBPool
}

func NewOperatorRepo(pool DBPool) *OperatorRepo {
	return &OperatorRepo{pool: pool}
}

// Create inserts a new operator. Expects caller to generate ID and hash password.
func (r *OperatorRepo) Create(ctx context.Context, o *Operator) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO operators (id, username, password_hash, display_name, role)
		 VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.Username, o.PasswordHash, o.DisplayName, o.Role,
	)
	return err
}

// GetByUsername returns (nil, nil) if not found.
func (r *OperatorRepo) GetByUsername(ctx context.Context, username string) (*Operator, error) {
	row := r.pool.QueryRow(ctx, `
    SELECT id, username, password_hash, display_name, role, created_at, updated_at
    FROM operators
    WHERE username = $1
    LIMIT 1`, username)

	var o Operator
	err := row.Scan(
		&o.ID,
		&o.Username,
		&o.PasswordHash,
		&o.DisplayName,
		&o.Role,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}
