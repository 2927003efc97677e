package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/utpal74/track-my-tasks-api/logger"
	"github.com/utpal74/track-my-tasks-api/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormStore keeps users, tasks and categories in a relational database.
type GormStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) a SQLite database file and migrates it.
func OpenSQLite(ctx context.Context, path string) (*GormStore, error) {
	if path == "" {
		path = "todo_auth.db"
	}
	if err := ensureDirForSQLite(path); err != nil {
		return nil, err
	}
	return openGorm(ctx, sqlite.Open(path), "SQLite")
}

// OpenPostgres connects to PostgreSQL and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*GormStore, error) {
	return openGorm(ctx, postgres.Open(dsn), "PostgreSQL")
}

func openGorm(ctx context.Context, dialector gorm.Dialector, backend string) (*GormStore, error) {
	log := logger.FromCtx(ctx)

	dbLogger := gormlogger.New(
		zap.NewStdLog(log.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, &connectionError{backend, err}
	}

	if err := db.WithContext(ctx).AutoMigrate(&model.User{}, &model.Category{}, &model.Task{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	log.Info("database ready", zap.String("backend", backend))
	return &GormStore{db: db}, nil
}

// NewGormStore wraps an already migrated connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

func (s *GormStore) UpdateUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("update user: %w", translate(err))
	}
	return nil
}

func (s *GormStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *GormStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *GormStore) UserByOAuth(ctx context.Context, provider, oauthID string) (*model.User, error) {
	return s.findUser(ctx, "oauth_provider = ? AND oauth_id = ?", provider, oauthID)
}

func (s *GormStore) findUser(ctx context.Context, query string, args ...any) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, fmt.Errorf("find user: %w", translate(err))
	}
	return &user, nil
}

func (s *GormStore) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete user tasks: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Category{}).Error; err != nil {
			return fmt.Errorf("delete user categories: %w", err)
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete user: %w", ErrNotFound)
		}
		return nil
	})
}

func (s *GormStore) ListTasks(ctx context.Context, userID uint, filter model.TaskFilter) ([]model.Task, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	tasks := make([]model.Task, 0)
	if err := query.Order("created_at ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *GormStore) GetTask(ctx context.Context, userID uint, id string) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&task).Error; err != nil {
		return nil, fmt.Errorf("find task: %w", translate(err))
	}
	return &task, nil
}

// CreateTask fails with ErrDuplicate when any user already has a task with the same id.
func (s *GormStore) CreateTask(ctx context.Context, task *model.Task) error {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.Task{}).Where("id = ?", task.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("create task: %w", ErrDuplicate)
	}
	if err := db.Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", translate(err))
	}
	return nil
}

func (s *GormStore) SaveTask(ctx context.Context, task *model.Task) error {
	res := s.db.WithContext(ctx).Model(task).
		Where("user_id = ?", task.UserID).
		Select("title", "category", "status", "estimated_hours", "actual_hours").
		Updates(task)
	if res.Error != nil {
		return fmt.Errorf("save task: %w", res.Error)
	}
	return nil
}

func (s *GormStore) DeleteTask(ctx context.Context, userID uint, id string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete task: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) ListCategories(ctx context.Context, userID uint) ([]model.Category, error) {
	categories := make([]model.Category, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *GormStore) GetCategory(ctx context.Context, userID, id uint) (*model.Category, error) {
	var category model.Category
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&category).Error; err != nil {
		return nil, fmt.Errorf("find category: %w", translate(err))
	}
	return &category, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", translate(err))
	}
	return nil
}

func (s *GormStore) SaveCategory(ctx context.Context, category *model.Category) error {
	res := s.db.WithContext(ctx).Model(category).
		Where("user_id = ?", category.UserID).
		Update("name", category.Name)
	if res.Error != nil {
		return fmt.Errorf("save category: %w", res.Error)
	}
	return nil
}

func (s *GormStore) DeleteCategory(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&model.Category{})
	if res.Error != nil {
		return fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete category: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// ensureDirForSQLite creates the parent dir for a SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
