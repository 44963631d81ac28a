package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"sftpfetchapi/pkg/logger"
	"sftpfetchapi/services/audit"

	"github.com/gin-gonic/gin"
)

// DownloadHistoryController handles the download audit endpoints.
type DownloadHistoryController struct {
	audit audit.AuditService
}

// NewDownloadHistoryController creates a new DownloadHistoryController
func NewDownloadHistoryController(srv audit.AuditService) *DownloadHistoryController {
	return &DownloadHistoryController{audit: srv}
}

// ListHistory retrieves recorded download requests, newest first
// @Summary List download history
// @Description Paginated audit trail of download requests. Requires AUDIT_MODE=mysql or embedded.
// @Tags History
// @Produce json
// @Param page query int false "Page number (1-indexed, default: 1)"
// @Param page_size query int false "Items per page (default: 10, max: 100)"
// @Success 200 {object} HistoryListResponse
// @Failure 503 {object} HistoryErrorResponse
// @Failure 500 {object} HistoryErrorResponse
// @Router /api/downloads/history [get]
func (hc *DownloadHistoryController) ListHistory(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	result, err := hc.audit.History(page, pageSize)
	if err != nil {
		hc.writeError(c, err)
		return
	}

	logger.Debugf("Retrieved %d audits (page %d of %d, page_size=%d, total=%d)",
		len(result.Audits), result.Page, result.TotalPages, result.PageSize, result.Total)

	c.JSON(http.StatusOK, HistoryListResponse{
		Success: true,
		Data:    result.Audits,
		Pagination: PaginationMetadata{
			Total:      result.Total,
			Page:       result.Page,
			PageSize:   result.PageSize,
			TotalPages: result.TotalPages,
		},
	})
}

// GetHistoryEntry retrieves the audit row of one download request
// @Summary Get download audit by request ID
// @Tags History
// @Produce json
// @Param request_id path string true "Request ID returned by /download-files"
// @Success 200 {object} HistoryEntryResponse
// @Failure 404 {object} HistoryErrorResponse
// @Failure 503 {object} HistoryErrorResponse
// @Router /api/downloads/history/{request_id} [get]
func (hc *DownloadHistoryController) GetHistoryEntry(c *gin.Context) {
	requestID := c.Param("request_id")

	entry, err := hc.audit.Get(requestID)
	if err != nil {
		hc.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, HistoryEntryResponse{Success: true, Data: entry})
}

func (hc *DownloadHistoryController) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, audit.ErrDisabled):
		status = http.StatusServiceUnavailable
	case errors.Is(err, audit.ErrNotFound):
		status = http.StatusNotFound
	default:
		logger.Errorf("Download history lookup failed: %v", err)
	}
	c.JSON(status, HistoryErrorResponse{Success: false, Error: err.Error()})
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		logger.Warnf("Invalid %s parameter: %s, using default: %d", key, raw, def)
		return def
	}
	return v
}

// RegisterDownloadHistoryRoutes registers the audit endpoints on rg.
func RegisterDownloadHistoryRoutes(rg *gin.RouterGroup, controller *DownloadHistoryController) {
	history := rg.Group("/downloads/history")
	{
		history.GET("", controller.ListHistory)
		history.GET("/:request_id", controller.GetHistoryEntry)
	}
}
