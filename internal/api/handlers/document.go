package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workdesk.io/workdesk/internal/api/middleware"
	apperrors "workdesk.io/workdesk/internal/pkg/errors"
	"workdesk.io/workdesk/internal/repository"
)

type createDocumentRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	CategoryID  *int64 `json:"category_id"`
	FileURL     string `json:"file_url"`
}

// CreateDocument files a new document.
func (s *Server) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "title is required"))
		return
	}
	doc, err := s.documents.Create(c.Request.Context(), repository.CreateDocumentParams{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		FileURL:     req.FileURL,
		CreatedBy:   middleware.GetUserID(c.Request.Context()),
	})
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusCreated, doc)
}

// ListDocuments returns documents with optional category filter and
// pagination.
func (s *Server) ListDocuments(c *gin.Context) {
	var categoryID *int64
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "category_id must be an integer"))
			return
		}
		categoryID = &id
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := s.documents.List(c.Request.Context(), categoryID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page.Data,
		"total":   page.Total,
		"limit":   page.Limit,
		"offset":  page.Offset,
	})
}

// GetDocument returns one document by id.
func (s *Server) GetDocument(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	doc, err := s.documents.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, apperrors.CodeDocumentNotFound, "document not found")
		return
	}
	ok(c, http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CategoryID  *int64  `json:"category_id"`
	FileURL     *string `json:"file_url"`
	Status      *string `json:"status"`
}

// UpdateDocument applies a partial update.
func (s *Server) UpdateDocument(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid document payload"))
		return
	}
	doc, err := s.documents.Update(c.Request.Context(), id, repository.UpdateDocumentParams{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		FileURL:     req.FileURL,
		Status:      req.Status,
	})
	if err != nil {
		fail(c, err, apperrors.CodeDocumentNotFound, "document not found")
		return
	}
	ok(c, http.StatusOK, doc)
}

// DeleteDocument removes a document.
func (s *Server) DeleteDocument(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	deleted, err := s.documents.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !deleted {
		c.Error(apperrors.NotFound(apperrors.CodeDocumentNotFound, "document not found"))
		return
	}
	okMessage(c, "Document deleted successfully")
}

// GetDocumentByUUID returns a document by its public UUID.
func (s *Server) GetDocumentByUUID(c *gin.Context) {
	id := c.Param("uuid")
	if id == "" {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "uuid is required"))
		return
	}
	doc, err := s.documents.GetByUUID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, apperrors.CodeDocumentNotFound, "document not found")
		return
	}
	ok(c, http.StatusOK, doc)
}
