package db

import (
	"context"
	"errors"

	"github.com/utpal74/track-my-tasks-api/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence boundary. Every task and category method is
// scoped by the owning user id.
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	UserByID(ctx context.Context, id uint) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	UserByOAuth(ctx context.Context, provider, oauthID string) (*model.User, error)
	// DeleteUser removes the user together with its tasks and categories.
	DeleteUser(ctx context.Context, id uint) error

	ListTasks(ctx context.Context, userID uint, filter model.TaskFilter) ([]model.Task, error)
	GetTask(ctx context.Context, userID uint, id string) (*model.Task, error)
	CreateTask(ctx context.Context, task *model.Task) error
	SaveTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, userID uint, id string) error

	ListCategories(ctx context.Context, userID uint) ([]model.Category, error)
	GetCategory(ctx context.Context, userID, id uint) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	SaveCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, userID, id uint) error

	Close(ctx context.Context) error
}
