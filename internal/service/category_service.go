package service

import (
	"context"
	"fmt"
	"strings"

	"todo-planner/internal/model"
	"todo-planner/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, user *model.User) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

// Create adds a category with a display color and a link slug derived
// from the name.
func (s *CategoryService) Create(ctx context.Context, user *model.User, name, color string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	return s.repo.GetOrCreate(ctx, user.ID, name, color, Slugify(name))
}

func (s *CategoryService) Delete(ctx context.Context, user *model.User, id uint) error {
	return s.repo.Delete(ctx, user.ID, id)
}
