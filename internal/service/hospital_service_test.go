package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ChlorophyllA/skin2/internal/cache"
	"github.com/ChlorophyllA/skin2/internal/model"
	"github.com/ChlorophyllA/skin2/internal/repository"
)

type mockHospitalStore struct {
	mock.Mock
}

func (m *mockHospitalStore) Suggestions(ctx context.Context, field, q string, limit int) ([]string, error) {
	args := m.Called(ctx, field, q, limit)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockHospitalStore) Cities(ctx context.Context, province string) ([]string, error) {
	args := m.Called(ctx, province)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockHospitalStore) Levels(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockHospitalStore) Search(ctx context.Context, f repository.HospitalFilters, limit, offset int) ([]model.Hospital, int, error) {
	args := m.Called(ctx, f, limit, offset)
	rows, _ := args.Get(0).([]model.Hospital)
	return rows, args.Int(1), args.Error(2)
}

func (m *mockHospitalStore) ReplaceAll(ctx context.Context, hs []model.Hospital) (int64, error) {
	args := m.Called(ctx, hs)
	return args.Get(0).(int64), args.Error(1)
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.data[key]; ok {
		return b, nil
	}
	return nil, cache.ErrMiss
}

func (c *mapCache) Set(_ context.Context, key string, v []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func TestHospitalService_Search_ClampsPage(t *testing.T) {
	store := &mockHospitalStore{}
	store.On("Search", mock.Anything, repository.HospitalFilters{Province: "广东", Departments: "皮肤科"}, 10, 0).
		Return([]model.Hospital(nil), 0, nil).Once()

	svc := NewHospitalService(store, nil, time.Minute)
	res, err := svc.Search(context.Background(), model.SearchQuery{Province: " 广东", Departments: "皮肤科 ", Page: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.PerPage)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Results)
	store.AssertExpectations(t)
}

func TestHospitalService_Search_Offset(t *testing.T) {
	store := &mockHospitalStore{}
	store.On("Search", mock.Anything, repository.HospitalFilters{}, 10, 20).
		Return([]model.Hospital{{Hospital: "A"}}, 21, nil).Once()

	res, err := NewHospitalService(store, nil, time.Minute).Search(context.Background(), model.SearchQuery{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 21, res.Total)
	assert.Equal(t, 3, res.Page)
	assert.Len(t, res.Results, 1)
}

func TestHospitalService_Search_Error(t *testing.T) {
	store := &mockHospitalStore{}
	store.On("Search", mock.Anything, mock.Anything, 10, 0).Return(nil, 0, errors.New("boom"))

	_, err := NewHospitalService(store, nil, time.Minute).Search(context.Background(), model.SearchQuery{})
	assert.ErrorContains(t, err, "repo search")
}

func TestHospitalService_CachesLookups(t *testing.T) {
	store := &mockHospitalStore{}
	store.On("Levels", mock.Anything).Return([]string{"三级甲等"}, nil).Once()
	store.On("Cities", mock.Anything, "广东").Return([]string{"广州"}, nil).Once()

	svc := NewHospitalService(store, newMapCache(), time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		levels, err := svc.Levels(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"三级甲等"}, levels)

		cities, err := svc.Cities(ctx, " 广东 ")
		require.NoError(t, err)
		assert.Equal(t, []string{"广州"}, cities)
	}
	store.AssertExpectations(t)
}

func TestHospitalService_Suggestions_Limit(t *testing.T) {
	store := &mockHospitalStore{}
	store.On("Suggestions", mock.Anything, "province", "", 20).Return([]string{"北京"}, nil).Once()
	store.On("Suggestions", mock.Anything, "province", "广", 100).Return([]string{"广东", "广西"}, nil).Once()

	svc := NewHospitalService(store, nil, time.Minute)
	got, err := svc.Suggestions(context.Background(), "province", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"北京"}, got)

	got, err = svc.Suggestions(context.Background(), "province", " 广 ", 500)
	require.NoError(t, err)
	assert.Equal(t, []string{"广东", "广西"}, got)
	store.AssertExpectations(t)
}

func TestHospitalService_Replace_InvalidatesCache(t *testing.T) {
	store := &mockHospitalStore{}
	store.On("Levels", mock.Anything).Return([]string{"一级"}, nil).Once()
	store.On("ReplaceAll", mock.Anything, mock.Anything).Return(int64(2), nil).Once()
	store.On("Levels", mock.Anything).Return([]string{"二级"}, nil).Once()

	svc := NewHospitalService(store, newMapCache(), time.Minute)
	ctx := context.Background()

	levels, _ := svc.Levels(ctx)
	assert.Equal(t, []string{"一级"}, levels)

	n, err := svc.Replace(ctx, []model.Hospital{{Hospital: "A"}, {Hospital: "B"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	levels, _ = svc.Levels(ctx)
	assert.Equal(t, []string{"二级"}, levels)
	store.AssertExpectations(t)
}

// brokenCache fails every purge.
type brokenCache struct {
	cache.Noop
}

func (brokenCache) DeletePrefix(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func TestHospitalService_Replace_LogsPurgeFailure(t *testing.T) {
	store := &mockHospitalStore{}
	store.On("ReplaceAll", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	var buf bytes.Buffer
	svc := NewHospitalService(store, brokenCache{}, time.Minute)
	svc.(*hospitalServiceImpl).log = zerolog.New(&buf)

	n, err := svc.Replace(context.Background(), []model.Hospital{{Hospital: "A"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "purge directory cache failed")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestClampSuggestionLimit(t *testing.T) {
	assert.Equal(t, 20, ClampSuggestionLimit(0))
	assert.Equal(t, 20, ClampSuggestionLimit(-1))
	assert.Equal(t, 30, ClampSuggestionLimit(30))
	assert.Equal(t, 100, ClampSuggestionLimit(101))
}
