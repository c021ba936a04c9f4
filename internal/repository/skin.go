package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ChlorophyllA/skin2/internal/model"
)

const skinColumns = `id, name, alias, category, symptoms, causes, treatment, prevention, department, contagious, description`

// SkinRepo reads the skin-disease encyclopedia.
type SkinRepo struct {
	pool DBPool
}

func NewSkinRepo(pool DBPool) *SkinRepo {
	return &SkinRepo{pool: pool}
}

func (r *SkinRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM skin_diseases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count skin diseases: %w", err)
	}
	return n, nil
}

// At returns the entry at offset in id order.
// Returns (nil, nil) if offset is past the end.
func (r *SkinRepo) At(ctx context.Context, offset int) (*model.SkinDisease, error) {
	return r.one(ctx, `SELECT `+skinColumns+` FROM skin_diseases ORDER BY id LIMIT 1 OFFSET $1`, offset)
}

// Random returns any entry, or (nil, nil) when the table is empty.
func (r *SkinRepo) Random(ctx context.Context) (*model.SkinDisease, error) {
	return r.one(ctx, `SELECT `+skinColumns+` FROM skin_diseases ORDER BY random() LIMIT 1`)
}

func (r *SkinRepo) one(ctx context.Context, sql string, args ...any) (*model.SkinDisease, error) {
	var d model.SkinDisease
	err := r.pool.QueryRow(ctx, sql, args...).Scan(
		&d.ID,
		&d.Name,
		&d.Alias,
		&d.Category,
		&d.Symptoms,
		&d.Causes,
		&d.Treatment,
		&d.Prevention,
		&d.Department,
		&d.Contagious,
		&d.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
