package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"workdesk.io/workdesk/internal/api/middleware"
	apperrors "workdesk.io/workdesk/internal/pkg/errors"
	"workdesk.io/workdesk/internal/repository"
)

type createMeetingRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	MeetingTime     time.Time `json:"meeting_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Location        string    `json:"location"`
	ParticipantIDs  []int64   `json:"participant_ids"`
}

// CreateMeeting inserts a meeting organized by the caller.
func (s *Server) CreateMeeting(c *gin.Context) {
	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "title and meeting_time are required"))
		return
	}

	meeting, err := s.meetings.Create(c.Request.Context(), repository.CreateMeetingParams{
		OrganizerID:     middleware.GetUserID(c.Request.Context()),
		Title:           req.Title,
		Description:     req.Description,
		MeetingTime:     req.MeetingTime,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		ParticipantIDs:  req.ParticipantIDs,
	})
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusCreated, meeting)
}

// ListMeetings returns meetings the caller organizes or attends.
func (s *Server) ListMeetings(c *gin.Context) {
	userID := middleware.GetUserID(c.Request.Context())
	meetings, err := s.meetings.ListForUser(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusOK, meetings)
}

// GetMeeting returns one meeting with its participants.
func (s *Server) GetMeeting(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	meeting, err := s.meetings.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, apperrors.CodeMeetingNotFound, "meeting not found")
		return
	}
	participants, err := s.meetings.Participants(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"meeting":      meeting,
		"participants": participants,
	})
}

type updateMeetingRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	MeetingTime     *time.Time `json:"meeting_time"`
	DurationMinutes *int       `json:"duration_minutes"`
	Location        *string    `json:"location"`
	Status          *string    `json:"status"`
}

// UpdateMeeting applies a partial update.
func (s *Server) UpdateMeeting(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req updateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid meeting payload"))
		return
	}

	meeting, err := s.meetings.Update(c.Request.Context(), id, repository.UpdateMeetingParams{
		Title:           req.Title,
		Description:     req.Description,
		MeetingTime:     req.MeetingTime,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Status:          req.Status,
	})
	if err != nil {
		fail(c, err, apperrors.CodeMeetingNotFound, "meeting not found")
		return
	}
	ok(c, http.StatusOK, meeting)
}

// DeleteMeeting removes a meeting.
func (s *Server) DeleteMeeting(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	deleted, err := s.meetings.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !deleted {
		c.Error(apperrors.NotFound(apperrors.CodeMeetingNotFound, "meeting not found"))
		return
	}
	okMessage(c, "Meeting deleted successfully")
}

type respondMeetingRequest struct {
	ResponseStatus string `json:"response_status" binding:"required,oneof=pending accepted declined"`
}

// RespondMeeting records the caller's RSVP.
func (s *Server) RespondMeeting(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req respondMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "response_status must be pending, accepted or declined"))
		return
	}
	userID := middleware.GetUserID(c.Request.Context())

	updated, err := s.meetings.Respond(c.Request.Context(), id, userID, req.ResponseStatus)
	if err != nil {
		c.Error(err)
		return
	}
	if !updated {
		c.Error(apperrors.NotFound(apperrors.CodeMeetingNotFound, "you are not a participant of this meeting"))
		return
	}
	okMessage(c, "Response recorded")
}

// MeetingParticipants returns a meeting's participant list.
func (s *Server) MeetingParticipants(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if _, err := s.meetings.GetByID(c.Request.Context(), id); err != nil {
		fail(c, err, apperrors.CodeMeetingNotFound, "meeting not found")
		return
	}
	participants, err := s.meetings.Participants(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusOK, participants)
}

// ListUpcomingMeetings returns the caller's scheduled meetings starting
// within the next `hours` hours (default one week).
func (s *Server) ListUpcomingMeetings(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "168"))
	if err != nil || hours <= 0 {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "hours must be a positive integer"))
		return
	}
	userID := middleware.GetUserID(c.Request.Context())

	meetings, err := s.meetings.UpcomingForUser(c.Request.Context(), userID,
		time.Now(), time.Duration(hours)*time.Hour)
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusOK, meetings)
}
