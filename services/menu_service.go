package services

import (
	"context"
	"strings"

	"littlelemon/entity"
	"littlelemon/pkg/money"
	"littlelemon/policy"
	"littlelemon/repository"
)

type MenuService struct {
	Repo repository.MenuItemRepository
}

func NewMenuService(repo repository.MenuItemRepository) *MenuService {
	return &MenuService{Repo: repo}
}

// MenuItemIn is the full body of POST and PUT.
type MenuItemIn struct {
	Title      string        `json:"title" validate:"required,max=255"`
	Price      *money.Amount `json:"price" validate:"required,money"`
	Featured   bool          `json:"featured"`
	CategoryID uint          `json:"category_id" validate:"required"`
}

// MenuItemPatch is the body of PATCH; nil fields are left alone.
type MenuItemPatch struct {
	Title      *string       `json:"title" validate:"omitempty,min=1,max=255"`
	Price      *money.Amount `json:"price" validate:"omitempty,money"`
	Featured   *bool         `json:"featured"`
	CategoryID *uint         `json:"category_id" validate:"omitempty,min=1"`
}

func (s *MenuService) List(ctx context.Context, id policy.Identity, q repository.MenuQuery) ([]entity.MenuItem, int64, error) {
	if err := policy.Decide(id, policy.MenuRead); err != nil {
		return nil, 0, err
	}
	return s.Repo.List(ctx, q)
}

func (s *MenuService) Get(ctx context.Context, id policy.Identity, itemID uint) (*entity.MenuItem, error) {
	if err := policy.Decide(id, policy.MenuRead); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, itemID)
}

func (s *MenuService) Create(ctx context.Context, id policy.Identity, in MenuItemIn) (*entity.MenuItem, error) {
	if err := policy.Decide(id, policy.MenuWrite); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := check(in); err != nil {
		return nil, err
	}

	item := &entity.MenuItem{
		Title:      in.Title,
		Price:      *in.Price,
		Featured:   in.Featured,
		CategoryID: in.CategoryID,
	}
	if err := s.Repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Replace is PUT: every editable field is overwritten.
func (s *MenuService) Replace(ctx context.Context, id policy.Identity, itemID uint, in MenuItemIn) (*entity.MenuItem, error) {
	if err := policy.Decide(id, policy.MenuWrite); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := check(in); err != nil {
		return nil, err
	}

	item, err := s.Repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	item.Title = in.Title
	item.Price = *in.Price
	item.Featured = in.Featured
	item.CategoryID = in.CategoryID
	if err := s.Repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Patch is PATCH: only the fields present in the body change.
func (s *MenuService) Patch(ctx context.Context, id policy.Identity, itemID uint, in MenuItemPatch) (*entity.MenuItem, error) {
	if err := policy.Decide(id, policy.MenuWrite); err != nil {
		return nil, err
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if err := check(in); err != nil {
		return nil, err
	}

	item, err := s.Repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		item.Title = *in.Title
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Featured != nil {
		item.Featured = *in.Featured
	}
	if in.CategoryID != nil {
		item.CategoryID = *in.CategoryID
	}
	if err := s.Repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, id policy.Identity, itemID uint) error {
	if err := policy.Decide(id, policy.MenuWrite); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, itemID)
}
