package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/utpal74/track-my-tasks-api/model"
	"github.com/utpal74/track-my-tasks-api/service"
)

type CategoriesHandler struct {
	svc *service.CategoryService
}

func NewCategoriesHandler(svc *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{svc: svc}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// categoryName reads the name from a JSON body, falling back to the
// category_name query parameter.
func categoryName(c *gin.Context) (string, bool) {
	var req categoryRequest
	if hasBody(c.Request) {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			return "", false
		}
	}
	if req.Name == "" {
		req.Name = c.Query("category_name")
	}
	name := strings.TrimSpace(req.Name)
	return name, name != ""
}

// hasBody reports whether the request may carry a body, including chunked
// ones of unknown length.
func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

func categoryID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (handler *CategoriesHandler) GetAllCategoriesHandler(c *gin.Context, user *model.User) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	categories, err := handler.svc.List(ctx, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (handler *CategoriesHandler) NewCategoryHandler(c *gin.Context, user *model.User) {
	name, ok := categoryName(c)
	if !ok {
		badRequest(c, "category name is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	category, err := handler.svc.Create(ctx, user, name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (handler *CategoriesHandler) UpdateCategoryHandler(c *gin.Context, user *model.User) {
	id, ok := categoryID(c)
	if !ok {
		badRequest(c, "invalid id format")
		return
	}
	name, ok := categoryName(c)
	if !ok {
		badRequest(c, "category name is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	category, err := handler.svc.Rename(ctx, user, id, name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (handler *CategoriesHandler) DeleteCategoryHandler(c *gin.Context, user *model.User) {
	id, ok := categoryID(c)
	if !ok {
		badRequest(c, "invalid id format")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := handler.svc.Delete(ctx, user, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
