package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ChlorophyllA/skin2/internal/model"
)

// DBPool is a minimal subset of pgxpool.Pool used by the repos.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// HospitalFilters narrows a hospital search. Empty fields do not filter.
type HospitalFilters struct {
	Province    string `json:"province,omitempty"`
	City        string `json:"city,omitempty"`
	Level       string `json:"level,omitempty"`
	Departments string `json:"departments,omitempty"`
}

// suggestionFields whitelists the columns that may be autocompleted.
var suggestionFields = map[string]string{
	"province": "province",
	"hospital": "hospital",
}

var hospitalColumns = []string{
	"province", "city", "hospital", "address", "phone",
	"level", "departments", "operation_mode", "email", "website",
}

// HospitalRepo reads and replaces the hospital directory.
type HospitalRepo struct {
	pool DBPool
}

func NewHospitalRepo(pool DBPool) *HospitalRepo {
	return &HospitalRepo{pool: pool}
}

// Suggestions lists distinct non-blank values of field. An empty q lists
// everything; otherwise values containing q (case-insensitive) are returned.
// Unknown fields yield an empty list.
func (r *HospitalRepo) Suggestions(ctx context.Context, field, q string, limit int) ([]string, error) {
	col, ok := suggestionFields[field]
	if !ok {
		return []string{}, nil
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return r.strings(ctx, fmt.Sprintf(
			`SELECT DISTINCT %[1]s FROM hospitals WHERE %[1]s <> '' ORDER BY %[1]s LIMIT $1`, col), limit)
	}
	return r.strings(ctx, fmt.Sprintf(
		`SELECT DISTINCT %[1]s FROM hospitals WHERE %[1]s <> '' AND %[1]s ILIKE $1 ORDER BY %[1]s LIMIT $2`, col),
		containsPattern(q), limit)
}

// Cities lists distinct non-blank cities, restricted to province when given.
func (r *HospitalRepo) Cities(ctx context.Context, province string) ([]string, error) {
	province = strings.TrimSpace(province)
	if province == "" {
		return r.strings(ctx, `SELECT DISTINCT city FROM hospitals WHERE city <> '' ORDER BY city`)
	}
	return r.strings(ctx, `SELECT DISTINCT city FROM hospitals WHERE city <> '' AND province = $1 ORDER BY city`, province)
}

// Levels lists distinct non-blank hospital levels.
func (r *HospitalRepo) Levels(ctx context.Context) ([]string, error) {
	return r.strings(ctx, `SELECT DISTINCT level FROM hospitals WHERE level <> '' ORDER BY level`)
}

// Search returns one page of hospitals matching f, ordered by name, plus the
// total number of matches.
func (r *HospitalRepo) Search(ctx context.Context, f HospitalFilters, limit, offset int) ([]model.Hospital, int, error) {
	where, args := buildHospitalWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hospitals`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count hospitals: %w", err)
	}

	args = append(args, limit, offset)
	sql := fmt.Sprintf(`SELECT %s FROM hospitals%s ORDER BY hospital LIMIT $%d OFFSET $%d`,
		strings.Join(hospitalColumns, ", "), where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search hospitals: %w", err)
	}
	defer rows.Close()

	out := make([]model.Hospital, 0, limit)
	for rows.Next() {
		var h model.Hospital
		if err := rows.Scan(
			&h.Province,
			&h.City,
			&h.Hospital,
			&h.Address,
			&h.Phone,
			&h.Level,
			&h.Departments,
			&h.OperationMode,
			&h.Email,
			&h.Website,
		); err != nil {
			return nil, 0, fmt.Errorf("scan hospital: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ReplaceAll swaps the whole directory for hs in one transaction.
func (r *HospitalRepo) ReplaceAll(ctx context.Context, hs []model.Hospital) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE hospitals RESTART IDENTITY`); err != nil {
		return 0, fmt.Errorf("truncate hospitals: %w", err)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"hospitals"}, hospitalColumns,
		pgx.CopyFromSlice(len(hs), func(i int) ([]any, error) {
			h := hs[i]
			return []any{
				h.Province, h.City, h.Hospital, h.Address, h.Phone,
				h.Level, h.Departments, h.OperationMode, h.Email, h.Website,
			}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("copy hospitals: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (r *HospitalRepo) strings(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, rows.Err()
}

// buildHospitalWhere renders the WHERE clause (with leading space) and its args.
func buildHospitalWhere(f HospitalFilters) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if v := strings.TrimSpace(f.Province); v != "" {
		add("province = $%d", v)
	}
	if v := strings.TrimSpace(f.City); v != "" {
		add("city = $%d", v)
	}
	if v := strings.TrimSpace(f.Level); v != "" {
		add("level = $%d", v)
	}
	if v := DepartmentKeyword(f.Departments); v != "" {
		add("REPLACE(departments, '科', '') ILIKE $%d", containsPattern(v))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// DepartmentKeyword normalizes a department filter: "皮肤科" and "皮肤" both
// match a hospital listing "皮肤科" or "皮肤".
func DepartmentKeyword(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(s, "科")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
