package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perm-tracker-api/internal/dto"
	"github.com/noah-isme/perm-tracker-api/internal/service"
	appErrors "github.com/noah-isme/perm-tracker-api/pkg/errors"
	"github.com/noah-isme/perm-tracker-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, ownerID string, query dto.ExportQuery) (*service.ExportResult, error)
}

// ExportHandler streams case exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds an ExportHandler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Cases godoc
// @Summary Export cases
// @Description Case list rendered as CSV or PDF, honouring the list's search and sort parameters
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv|pdf"
// @Param q query string false "Search query"
// @Param sort query string false "Sort field"
// @Param dir query string false "asc|desc"
// @Param today query string false "Reference date (yyyy-MM-dd)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /exports/cases [get]
func (h *ExportHandler) Cases(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	result, err := h.service.Export(c.Request.Context(), owner, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}
