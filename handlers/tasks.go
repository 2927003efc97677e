package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/utpal74/track-my-tasks-api/model"
	"github.com/utpal74/track-my-tasks-api/service"
)

type TasksHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TasksHandler {
	return &TasksHandler{svc: svc}
}

type taskRequest struct {
	ID             string   `json:"id"`
	Title          string   `json:"title" binding:"required"`
	Category       string   `json:"category"`
	Status         string   `json:"status"`
	CreatedAt      string   `json:"created_at"`
	EstimatedHours *float64 `json:"estimated_hours" binding:"omitempty,gte=0"`
	ActualHours    *float64 `json:"actual_hours" binding:"omitempty,gte=0"`
}

type taskUpdateRequest struct {
	Title          *string       `json:"title"`
	Category       *string       `json:"category"`
	Status         *string       `json:"status"`
	EstimatedHours optionalHours `json:"estimated_hours"`
	ActualHours    optionalHours `json:"actual_hours"`
}

// optionalHours tells an absent key from an explicit null, which clears the
// stored value.
type optionalHours struct {
	set   bool
	value *float64
}

func (o *optionalHours) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v < 0 {
		return errors.New("hours must not be negative")
	}
	o.value = &v
	return nil
}

func (o optionalHours) update() service.HoursUpdate {
	return service.HoursUpdate{Set: o.set, Value: o.value}
}

// GetAllTasksHandler lists the user's tasks, optionally filtered by
// ?status= and ?category=.
func (handler *TasksHandler) GetAllTasksHandler(c *gin.Context, user *model.User) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	tasks, err := handler.svc.List(ctx, user, model.TaskFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (handler *TasksHandler) NewTaskHandler(c *gin.Context, user *model.User) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	task, err := handler.svc.Create(ctx, user, service.TaskInput{
		ID:             req.ID,
		Title:          req.Title,
		Category:       req.Category,
		Status:         req.Status,
		CreatedAt:      req.CreatedAt,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (handler *TasksHandler) SearchTaskHandler(c *gin.Context, user *model.User) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	task, err := handler.svc.Get(ctx, user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (handler *TasksHandler) UpdateTaskHandler(c *gin.Context, user *model.User) {
	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	task, err := handler.svc.Update(ctx, user, c.Param("id"), service.TaskUpdate{
		Title:          req.Title,
		Category:       req.Category,
		Status:         req.Status,
		EstimatedHours: req.EstimatedHours.update(),
		ActualHours:    req.ActualHours.update(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (handler *TasksHandler) DeleteTaskHandler(c *gin.Context, user *model.User) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := handler.svc.Delete(ctx, user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
