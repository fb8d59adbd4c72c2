package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perm-tracker-api/internal/dto"
	"github.com/noah-isme/perm-tracker-api/internal/middleware"
	"github.com/noah-isme/perm-tracker-api/internal/models"
	appErrors "github.com/noah-isme/perm-tracker-api/pkg/errors"
	"github.com/noah-isme/perm-tracker-api/pkg/response"
)

type caseService interface {
	List(ctx context.Context, ownerID string, query dto.CaseListQuery) (*dto.CaseListResult, error)
	Get(ctx context.Context, ownerID, id, today string) (*models.CaseDetail, error)
	Create(ctx context.Context, ownerID string, payload dto.CasePayload) (*models.Case, error)
	Update(ctx context.Context, ownerID, id string, payload dto.CasePayload) (*models.Case, error)
	Delete(ctx context.Context, ownerID, id string) error
	Restore(ctx context.Context, ownerID, id string) (*models.Case, error)
	SetFavorite(ctx context.Context, ownerID, id string, req dto.FavoriteRequest) error
	AddRequest(ctx context.Context, ownerID, caseID string, req dto.CreateRequestEntry) (*models.RequestEntry, error)
	RespondRequest(ctx context.Context, ownerID, caseID, requestID string, req dto.RespondRequest) error
}

// CaseHandler exposes PERM case endpoints.
type CaseHandler struct {
	service caseService
}

// NewCaseHandler builds a CaseHandler.
func NewCaseHandler(svc caseService) *CaseHandler {
	return &CaseHandler{service: svc}
}

// List godoc
// @Summary List cases
// @Description Projected cases of the current user, searched, sorted and paginated
// @Tags Cases
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search query"
// @Param sort query string false "deadline|updated|employer|status|pwdFiled|etaFiled|i140Filed"
// @Param dir query string false "asc|desc"
// @Param status query string false "Stage filter"
// @Param favorites query bool false "Favorites only"
// @Param includeClosed query bool false "Include closed cases"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param today query string false "Reference date (yyyy-MM-dd)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cases [get]
func (h *CaseHandler) List(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var query dto.CaseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	result, err := h.service.List(c.Request.Context(), owner, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, result.CacheHit)
	middleware.SetMeta(c, "today", result.Today)
	pagination := result.Pagination
	response.JSON(c, http.StatusOK, result.Items, &pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get case
// @Description Case record with its next deadline and every active deadline
// @Tags Cases
// @Produce json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Param today query string false "Reference date (yyyy-MM-dd)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{id} [get]
func (h *CaseHandler) Get(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), owner, c.Param("id"), c.Query("today"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create case
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CasePayload true "Case payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cases [post]
func (h *CaseHandler) Create(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var payload dto.CasePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid case payload"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), owner, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update case
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Param payload body dto.CasePayload true "Case payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /cases/{id} [put]
func (h *CaseHandler) Update(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var payload dto.CasePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid case payload"))
		return
	}
	updated, err := h.service.Update(c.Request.Context(), owner, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete case
// @Description Soft-deletes a case; it can be restored later
// @Tags Cases
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /cases/{id} [delete]
func (h *CaseHandler) Delete(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), owner, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Restore godoc
// @Summary Restore case
// @Tags Cases
// @Produce json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{id}/restore [post]
func (h *CaseHandler) Restore(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	restored, err := h.service.Restore(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, restored, nil)
}

// SetFavorite godoc
// @Summary Mark or unmark a case as favorite
// @Tags Cases
// @Accept json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Param payload body dto.FavoriteRequest true "Favorite flag"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{id}/favorite [put]
func (h *CaseHandler) SetFavorite(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid favorite payload"))
		return
	}
	if err := h.service.SetFavorite(c.Request.Context(), owner, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddRequest godoc
// @Summary Record an RFI or RFE
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Param payload body dto.CreateRequestEntry true "Request entry"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{id}/requests [post]
func (h *CaseHandler) AddRequest(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.CreateRequestEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}
	entry, err := h.service.AddRequest(c.Request.Context(), owner, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// RespondRequest godoc
// @Summary Record the response to an RFI or RFE
// @Tags Cases
// @Accept json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Param requestId path string true "Request entry ID"
// @Param payload body dto.RespondRequest true "Response submission"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{id}/requests/{requestId}/response [put]
func (h *CaseHandler) RespondRequest(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid response payload"))
		return
	}
	if err := h.service.RespondRequest(c.Request.Context(), owner, c.Param("id"), c.Param("requestId"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
