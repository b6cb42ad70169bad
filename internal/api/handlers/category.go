package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "workdesk.io/workdesk/internal/pkg/errors"
)

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parent_id"`
}

// CreateCategory inserts a category.
func (s *Server) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "name is required"))
		return
	}
	cat, err := s.categories.Create(c.Request.Context(), req.Name, req.Description, req.ParentID)
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusCreated, cat)
}

// ListCategories returns all categories.
func (s *Server) ListCategories(c *gin.Context) {
	cats, err := s.categories.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusOK, cats)
}

// GetCategory returns one category by id.
func (s *Server) GetCategory(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	cat, err := s.categories.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, apperrors.CodeCategoryNotFound, "category not found")
		return
	}
	ok(c, http.StatusOK, cat)
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *int64  `json:"parent_id"`
}

// UpdateCategory applies a partial update.
func (s *Server) UpdateCategory(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid category payload"))
		return
	}
	cat, err := s.categories.Update(c.Request.Context(), id, req.Name, req.Description, req.ParentID)
	if err != nil {
		fail(c, err, apperrors.CodeCategoryNotFound, "category not found")
		return
	}
	ok(c, http.StatusOK, cat)
}

// DeleteCategory removes a category.
func (s *Server) DeleteCategory(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	deleted, err := s.categories.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !deleted {
		c.Error(apperrors.NotFound(apperrors.CodeCategoryNotFound, "category not found"))
		return
	}
	okMessage(c, "Category deleted successfully")
}

// CategoryChildren returns the direct children of a category.
func (s *Server) CategoryChildren(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if _, err := s.categories.GetByID(c.Request.Context(), id); err != nil {
		fail(c, err, apperrors.CodeCategoryNotFound, "category not found")
		return
	}
	children, err := s.categories.Children(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusOK, children)
}
