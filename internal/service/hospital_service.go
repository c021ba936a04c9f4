package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ChlorophyllA/skin2/internal/cache"
	"github.com/ChlorophyllA/skin2/internal/model"
	"github.com/ChlorophyllA/skin2/internal/repository"
)

const (
	DefaultSuggestionLimit = 20
	MaxSuggestionLimit     = 100

	cacheNamespace = "dir:"
)

// HospitalStore is the subset of repository.HospitalRepo used by HospitalService.
type HospitalStore interface {
	Suggestions(ctx context.Context, field, q string, limit int) ([]string, error)
	Cities(ctx context.Context, province string) ([]string, error)
	Levels(ctx context.Context) ([]string, error)
	Search(ctx context.Context, f repository.HospitalFilters, limit, offset int) ([]model.Hospital, int, error)
	ReplaceAll(ctx context.Context, hs []model.Hospital) (int64, error)
}

// HospitalService defines the directory lookups used by HTTP handlers.
type HospitalService interface {
	Levels(ctx context.Context) ([]string, error)
	Cities(ctx context.Context, province string) ([]string, error)
	// Suggestions clamps limit into [1, MaxSuggestionLimit]; 0 means DefaultSuggestionLimit.
	Suggestions(ctx context.Context, field, q string, limit int) ([]string, error)
	// Search returns one page of PageSize records; pages below 1 are treated as 1.
	Search(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error)
	// Replace swaps the whole directory and drops cached lookups.
	Replace(ctx context.Context, hs []model.Hospital) (int64, error)
}

type hospitalServiceImpl struct {
	store HospitalStore
	cache cache.Provider
	ttl   time.Duration
	log   zerolog.Logger
}

// NewHospitalService wires the store with a cache. A nil provider disables caching.
func NewHospitalService(store HospitalStore, c cache.Provider, ttl time.Duration) HospitalService {
	if c == nil {
		c = cache.Noop{}
	}
	return &hospitalServiceImpl{store: store, cache: c, ttl: ttl, log: log.Logger}
}

func (s *hospitalServiceImpl) Levels(ctx context.Context) ([]string, error) {
	return cache.Remember(ctx, s.cache, cacheNamespace+"levels", s.ttl, s.store.Levels)
}

func (s *hospitalServiceImpl) Cities(ctx context.Context, province string) ([]string, error) {
	province = strings.TrimSpace(province)
	return cache.Remember(ctx, s.cache, cacheNamespace+"cities:"+province, s.ttl, func(ctx context.Context) ([]string, error) {
		return s.store.Cities(ctx, province)
	})
}

func (s *hospitalServiceImpl) Suggestions(ctx context.Context, field, q string, limit int) ([]string, error) {
	limit = ClampSuggestionLimit(limit)
	q = strings.TrimSpace(q)
	key := cacheNamespace + "suggest:" + field + ":" + strconv.Itoa(limit) + ":" + q
	return cache.Remember(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]string, error) {
		return s.store.Suggestions(ctx, field, q, limit)
	})
}

func (s *hospitalServiceImpl) Search(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	filters := repository.HospitalFilters{
		Province:    strings.TrimSpace(q.Province),
		City:        strings.TrimSpace(q.City),
		Level:       strings.TrimSpace(q.Level),
		Departments: strings.TrimSpace(q.Departments),
	}
	rows, total, err := s.store.Search(ctx, filters, model.PageSize, (page-1)*model.PageSize)
	if err != nil {
		return nil, fmt.Errorf("repo search: %w", err)
	}
	if rows == nil {
		rows = []model.Hospital{}
	}
	return &model.SearchResult{
		Total:   total,
		Page:    page,
		PerPage: model.PageSize,
		Results: rows,
	}, nil
}

func (s *hospitalServiceImpl) Replace(ctx context.Context, hs []model.Hospital) (int64, error) {
	n, err := s.store.ReplaceAll(ctx, hs)
	if err != nil {
		return 0, fmt.Errorf("repo replace: %w", err)
	}
	// the import is committed; stale lookups expire with the TTL
	if err := s.cache.DeletePrefix(ctx, cacheNamespace); err != nil {
		s.log.Warn().Err(err).Str("prefix", cacheNamespace).Int64("rows", n).Msg("purge directory cache failed")
	}
	return n, nil
}

func ClampSuggestionLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSuggestionLimit
	case limit > MaxSuggestionLimit:
		return MaxSuggestionLimit
	}
	return limit
}
