package services

import (
	"context"
	"strings"

	"littlelemon/entity"
	"littlelemon/policy"
	"littlelemon/repository"
)

type CategoryService struct {
	Repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{Repo: repo}
}

type CategoryIn struct {
	Slug  string `json:"slug" validate:"required,max=50"`
	Title string `json:"title" validate:"required,max=255"`
}

func (s *CategoryService) List(ctx context.Context, id policy.Identity) ([]entity.Category, error) {
	if err := policy.Decide(id, policy.CategoryRead); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx)
}

func (s *CategoryService) Create(ctx context.Context, id policy.Identity, in CategoryIn) (*entity.Category, error) {
	if err := policy.Decide(id, policy.CategoryWrite); err != nil {
		return nil, err
	}
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Title = strings.TrimSpace(in.Title)
	if err := check(in); err != nil {
		return nil, err
	}

	cat := &entity.Category{Slug: in.Slug, Title: in.Title}
	if err := s.Repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Delete fails with ConstraintViolation while menu items use the category.
func (s *CategoryService) Delete(ctx context.Context, id policy.Identity, categoryID uint) error {
	if err := policy.Decide(id, policy.CategoryWrite); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, categoryID)
}
