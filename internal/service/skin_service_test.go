package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChlorophyllA/skin2/internal/model"
)

type fakeSkinStore struct {
	entries    []model.SkinDisease
	lastOffset int
}

func (f *fakeSkinStore) Count(context.Context) (int, error) { return len(f.entries), nil }

func (f *fakeSkinStore) At(_ context.Context, offset int) (*model.SkinDisease, error) {
	f.lastOffset = offset
	if offset >= len(f.entries) {
		return nil, nil
	}
	d := f.entries[offset]
	return &d, nil
}

func (f *fakeSkinStore) Random(context.Context) (*model.SkinDisease, error) {
	if len(f.entries) == 0 {
		return nil, nil
	}
	return &f.entries[0], nil
}

func TestSkinService_Page(t *testing.T) {
	store := &fakeSkinStore{entries: []model.SkinDisease{{ID: 1, Name: "痤疮"}, {ID: 2, Name: "湿疹"}}}
	svc := NewSkinService(store)

	p, err := svc.Page(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, []model.SkinDisease{{ID: 2, Name: "湿疹"}}, p.Results)

	p, err = svc.Page(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, store.lastOffset)

	p, err = svc.Page(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, p.Results)
	assert.NotNil(t, p.Results)
}

func TestSkinService_Random_Empty(t *testing.T) {
	d, err := NewSkinService(&fakeSkinStore{}).Random(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, d)
}
