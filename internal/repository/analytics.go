package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SearchStat is one aggregated row of the search log.
type SearchStat struct {
	Filters    json.RawMessage `json:"filters"`
	Searches   int             `json:"searches"`
	AvgResults float64         `json:"avg_results"`
	LastSeenAt time.Time       `json:"last_seen_at"`
}

// AnalyticsRepo defines search logging operations used by handlers.
type AnalyticsRepo interface {
	// LogSearch records a search event (filters + page + resultCount).
	LogSearch(ctx context.Context, filters HospitalFilters, page, resultCount int) error
	// TopSearches aggregates events since the given time, most frequent first.
	TopSearches(ctx context.Context, since time.Time, limit int) ([]SearchStat, error)
}

// analyticsRepo is a simple Postgres-backed implementation.
type analyticsRepo struct {
	pool DBPool
}

func NewAnalyticsRepo(pool DBPool) AnalyticsRepo {
	return &analyticsRepo{pool: pool}
}

func (a *analyticsRepo) LogSearch(ctx context.Context, filters HospitalFilters, page, resultCount int) error {
	// serialize filters as JSONB
	b, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO search_events (filters, page, result_count) VALUES ($1,$2,$3)`,
		b, page, resultCount,
	)
	return err
}

func (a *analyticsRepo) TopSearches(ctx context.Context, since time.Time, limit int) ([]SearchStat, error) {
	rows, err := a.pool.Query(ctx, `
    SELECT filters, COUNT(*), AVG(result_count)::float8, MAX(created_at)
    FROM search_events
    WHERE created_at >= $1
    GROUP BY filters
    ORDER BY COUNT(*) DESC, MAX(created_at) DESC
    LIMIT $2`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query search stats: %w", err)
	}
	defer rows.Close()

	out := []SearchStat{}
	for rows.Next() {
		var s SearchStat
		var raw []byte
		if err := rows.Scan(&raw, &s.Searches, &s.AvgResults, &s.LastSeenAt); err != nil {
			return nil, err
		}
		s.Filters = raw
		out = append(out, s)
	}
	return out, rows.Err()
}
