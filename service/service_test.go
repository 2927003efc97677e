package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/utpal74/track-my-tasks-api/auth"
	"github.com/utpal74/track-my-tasks-api/db"
	"github.com/utpal74/track-my-tasks-api/model"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) db.Store {
	t.Helper()
	ctx := context.Background()
	store, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(ctx) })
	return store
}

func newTestAuth(t *testing.T, store db.Store) (*AuthService, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "test-secret", TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewAuthService(store, auth.NewHasher(bcrypt.MinCost), tokens), tokens
}

func newTestUser(t *testing.T, store db.Store, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func ptr[T any](v T) *T { return &v }
