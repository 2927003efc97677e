package service

import (
	"context"
	"errors"

	"github.com/utpal74/track-my-tasks-api/db"
	"github.com/utpal74/track-my-tasks-api/model"
)

// CategoryService manages the acting user's categories. Deleting a category
// leaves tasks alone: a task's category is a free-form label.
type CategoryService struct {
	store db.Store
}

func NewCategoryService(store db.Store) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) List(ctx context.Context, user *model.User) ([]model.Category, error) {
	return s.store.ListCategories(ctx, user.ID)
}

func (s *CategoryService) Create(ctx context.Context, user *model.User, name string) (*model.Category, error) {
	category := &model.Category{UserID: user.ID, Name: name}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Rename(ctx context.Context, user *model.User, id uint, name string) (*model.Category, error) {
	category, err := s.store.GetCategory(ctx, user.ID, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.store.SaveCategory(ctx, category); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, user *model.User, id uint) error {
	err := s.store.DeleteCategory(ctx, user.ID, id)
	if errors.Is(err, db.ErrNotFound) {
		return ErrCategoryNotFound
	}
	return err
}
