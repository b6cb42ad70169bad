package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workdesk.io/workdesk/internal/api/middleware"
	apperrors "workdesk.io/workdesk/internal/pkg/errors"
	"workdesk.io/workdesk/internal/repository"
)

type createReportRequest struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content"`
	CategoryID *int64 `json:"category_id"`
}

// CreateReport files a new report in draft status.
func (s *Server) CreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "title is required"))
		return
	}
	rep, err := s.reports.Create(c.Request.Context(), repository.CreateReportParams{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		CreatedBy:  middleware.GetUserID(c.Request.Context()),
	})
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusCreated, rep)
}

// ListReports returns reports with optional category and status filters.
func (s *Server) ListReports(c *gin.Context) {
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

	page, err := s.reports.List(c.Request.Context(), categoryID, c.Query("status"), limit, offset)
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

// GetReport returns one report by id.
func (s *Server) GetReport(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	rep, err := s.reports.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, apperrors.CodeReportNotFound, "report not found")
		return
	}
	ok(c, http.StatusOK, rep)
}

type updateReportRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	CategoryID *int64  `json:"category_id"`
	Status     *string `json:"status"`
}

// UpdateReport applies a partial update.
func (s *Server) UpdateReport(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid report payload"))
		return
	}
	rep, err := s.reports.Update(c.Request.Context(), id, repository.UpdateReportParams{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Status:     req.Status,
	})
	if err != nil {
		fail(c, err, apperrors.CodeReportNotFound, "report not found")
		return
	}
	ok(c, http.StatusOK, rep)
}

// DeleteReport removes a report.
func (s *Server) DeleteReport(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	deleted, err := s.reports.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !deleted {
		c.Error(apperrors.NotFound(apperrors.CodeReportNotFound, "report not found"))
		return
	}
	okMessage(c, "Report deleted successfully")
}
