package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/utpal74/track-my-tasks-api/db"
	"github.com/utpal74/track-my-tasks-api/model"
)

// DefaultTaskStatus is assigned when a task is created without a status.
const DefaultTaskStatus = "active"

// TaskService manages the acting user's tasks.
type TaskService struct {
	store db.Store
	now   func() time.Time
}

func NewTaskService(store db.Store) *TaskService {
	return &TaskService{store: store, now: time.Now}
}

// TaskInput is the client payload for a new task.
type TaskInput struct {
	ID             string
	Title          string
	Category       string
	Status         string
	CreatedAt      string
	EstimatedHours *float64
	ActualHours    *float64
}

// HoursUpdate changes an hours field when Set. A nil Value clears it.
type HoursUpdate struct {
	Set   bool
	Value *float64
}

// TaskUpdate carries the fields to change; nil or unset fields are left alone.
type TaskUpdate struct {
	Title          *string
	Category       *string
	Status         *string
	EstimatedHours HoursUpdate
	ActualHours    HoursUpdate
}

func (s *TaskService) List(ctx context.Context, user *model.User, filter model.TaskFilter) ([]model.Task, error) {
	return s.store.ListTasks(ctx, user.ID, filter)
}

func (s *TaskService) Get(ctx context.Context, user *model.User, id string) (*model.Task, error) {
	task, err := s.store.GetTask(ctx, user.ID, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	return task, err
}

// Create stores the task under the id exactly as sent, so later lookups by
// path segment find it. A blank id gets a generated one.
func (s *TaskService) Create(ctx context.Context, user *model.User, in TaskInput) (*model.Task, error) {
	if strings.ContainsRune(in.ID, '/') {
		return nil, ErrInvalidTaskID
	}
	task := &model.Task{
		ID:             in.ID,
		UserID:         user.ID,
		Title:          in.Title,
		Category:       in.Category,
		Status:         in.Status,
		CreatedAt:      in.CreatedAt,
		EstimatedHours: in.EstimatedHours,
		ActualHours:    in.ActualHours,
	}
	if strings.TrimSpace(task.ID) == "" {
		task.ID = xid.New().String()
	}
	if task.Status == "" {
		task.Status = DefaultTaskStatus
	}
	if task.CreatedAt == "" {
		task.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrTaskExists
		}
		return nil, err
	}
	return task, nil
}

// Update applies in to the task. Concurrent updates race; the last write wins.
func (s *TaskService) Update(ctx context.Context, user *model.User, id string, in TaskUpdate) (*model.Task, error) {
	task, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Category != nil {
		task.Category = *in.Category
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.EstimatedHours.Set {
		task.EstimatedHours = in.EstimatedHours.Value
	}
	if in.ActualHours.Set {
		task.ActualHours = in.ActualHours.Value
	}
	if err := s.store.SaveTask(ctx, task); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, user *model.User, id string) error {
	err := s.store.DeleteTask(ctx, user.ID, id)
	if errors.Is(err, db.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}
