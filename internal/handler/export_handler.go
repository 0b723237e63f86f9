package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
	"github.com/bestsecurity/meeting-scheduler/pkg/response"
)

type exportService interface {
	DaySheet(ctx context.Context, resourceID, date, format string) ([]byte, string, string, error)
}

// ExportHandler serves downloadable schedule sheets.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// DaySheet godoc
// @Summary Export one resource day as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param resource_id query string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/day-sheet [get]
func (h *ExportHandler) DaySheet(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	resourceID := strings.TrimSpace(c.Query("resource_id"))
	date := strings.TrimSpace(c.Query("date"))
	if resourceID == "" || date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resource_id and date are required"))
		return
	}

	data, contentType, filename, err := h.service.DaySheet(c.Request.Context(), resourceID, date, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}
