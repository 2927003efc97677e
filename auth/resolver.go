package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/utpal74/track-my-tasks-api/db"
	"github.com/utpal74/track-my-tasks-api/model"
)

// UserFinder looks users up by primary key.
type UserFinder interface {
	UserByID(ctx context.Context, id uint) (*model.User, error)
}

// Resolver turns a verified token subject into a user record.
type Resolver struct {
	users UserFinder
}

func NewResolver(users UserFinder) *Resolver {
	return &Resolver{users: users}
}

func (r *Resolver) Resolve(ctx context.Context, subjectID uint) (*model.User, error) {
	user, err := r.users.UserByID(ctx, subjectID)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, db.ErrNotFound):
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("resolve user: %w", err)
	}
}
