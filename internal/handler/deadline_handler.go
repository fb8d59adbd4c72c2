package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perm-tracker-api/internal/dto"
	"github.com/noah-isme/perm-tracker-api/internal/models"
	appErrors "github.com/noah-isme/perm-tracker-api/pkg/errors"
	"github.com/noah-isme/perm-tracker-api/pkg/response"
)

type deadlineService interface {
	Upcoming(ctx context.Context, ownerID, today string, withinDays int) (*models.DeadlineSummary, error)
	Calendar(ctx context.Context, ownerID, today string) ([]byte, error)
	ContentType() string
}

// DeadlineHandler exposes deadline summaries and calendar feeds.
type DeadlineHandler struct {
	service deadlineService
}

// NewDeadlineHandler builds a DeadlineHandler.
func NewDeadlineHandler(svc deadlineService) *DeadlineHandler {
	return &DeadlineHandler{service: svc}
}

// Upcoming godoc
// @Summary Upcoming deadlines
// @Description Next deadline of every active case due within the window; overdue deadlines are always listed
// @Tags Deadlines
// @Produce json
// @Security BearerAuth
// @Param today query string false "Reference date (yyyy-MM-dd)"
// @Param within query int false "Window in days"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /deadlines/upcoming [get]
func (h *DeadlineHandler) Upcoming(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var query dto.UpcomingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	if query.Within < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "within must be positive"))
		return
	}

	summary, err := h.service.Upcoming(c.Request.Context(), owner, query.Today, query.Within)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Calendar godoc
// @Summary Deadline calendar
// @Description iCalendar feed of every active deadline
// @Tags Deadlines
// @Produce text/calendar
// @Security BearerAuth
// @Param today query string false "Reference date (yyyy-MM-dd)"
// @Success 200 {string} string "iCalendar feed"
// @Failure 400 {object} response.Envelope
// @Router /deadlines/calendar.ics [get]
func (h *DeadlineHandler) Calendar(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	feed, err := h.service.Calendar(c.Request.Context(), owner, c.Query("today"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, fmt.Sprintf("perm-deadlines-%s.ics", owner), h.service.ContentType(), feed)
}
