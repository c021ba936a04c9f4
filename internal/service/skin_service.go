package service

import (
	"context"
	"fmt"

	"github.com/ChlorophyllA/skin2/internal/model"
)

// SkinStore is the subset of repository.SkinRepo used by SkinService.
type SkinStore interface {
	Count(ctx context.Context) (int, error)
	At(ctx context.Context, offset int) (*model.SkinDisease, error)
	Random(ctx context.Context) (*model.SkinDisease, error)
}

// SkinService pages through the encyclopedia one entry at a time.
type SkinService interface {
	Page(ctx context.Context, page int) (*model.SkinPage, error)
	// Random returns (nil, nil) when the encyclopedia is empty.
	Random(ctx context.Context) (*model.SkinDisease, error)
}

type skinServiceImpl struct {
	store SkinStore
}

func NewSkinService(store SkinStore) SkinService {
	return &skinServiceImpl{store: store}
}

func (s *skinServiceImpl) Page(ctx context.Context, page int) (*model.SkinPage, error) {
	if page < 1 {
		page = 1
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	out := &model.SkinPage{Total: total, Page: page, Results: []model.SkinDisease{}}
	d, err := s.store.At(ctx, page-1)
	if err != nil {
		return nil, fmt.Errorf("repo at: %w", err)
	}
	if d != nil {
		out.Results = append(out.Results, *d)
	}
	return out, nil
}

func (s *skinServiceImpl) Random(ctx context.Context) (*model.SkinDisease, error) {
	return s.store.Random(ctx)
}
