package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sftpfetchapi/models"
	"sftpfetchapi/pkg/logger"
	"sftpfetchapi/services/audit"
	"sftpfetchapi/services/fileops"
	"sftpfetchapi/services/transfer"
	"sftpfetchapi/utils"

	"github.com/gin-gonic/gin"
)

var (
	fetchSrv       fileops.FetchService
	auditSrv       = audit.NewAuditServiceWithDeps(nil)
	requestTimeout = 120 * time.Second
)

// SetFetchService initializes the SFTP fetch service instance.
func SetFetchService(srv fileops.FetchService) {
	fetchSrv = srv
}

// SetAuditService initializes the audit service used to record every download request.
func SetAuditService(srv audit.AuditService) {
	auditSrv = srv
}

// SetRequestTimeout bounds each download request from connect to close. Zero disables the bound.
func SetRequestTimeout(d time.Duration) {
	requestTimeout = d
}

// DownloadFiles connects to an SFTP server and downloads every expected file found in remote_path.
// @Summary Download expected files over SFTP
// @Description Opens one SFTP session with the supplied private key, lists remote_path, and downloads the first entry (in listing order) whose name contains each expected filename, case-insensitively. Content is returned base64-encoded. Expected files with no match, or whose download fails, are reported in missing_files.
// @Tags Download
// @Accept json
// @Produce json
// @Param request body models.DownloadRequest true "Connection details, remote path and expected filename tokens"
// @Success 200 {object} models.DownloadResponse "Request completed; check complete and missing_files"
// @Failure 400 {object} models.ErrorResponse "Invalid request body, missing fields, unparsable key, or remote path cannot be listed"
// @Failure 401 {object} models.ErrorResponse "SSH authentication rejected"
// @Failure 502 {object} models.ErrorResponse "SFTP server unreachable"
// @Failure 504 {object} models.ErrorResponse "Request timed out"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/download-files [post]
func downloadFiles(c *gin.Context) {
	var req models.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warnf("Invalid download request body: %v", err)
		writeFetchError(c, &fileops.FetchError{Category: fileops.CategoryClient, Op: "decode request", Err: err})
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		fields := utils.ValidationFields(err)
		logger.Warnf("Download request validation failed: %v", err)
		fe := &fileops.FetchError{Category: fileops.CategoryClient, Op: "validate request", Fields: fields, Err: err}
		if len(fields) > 0 {
			fe.Err = fmt.Errorf("invalid or missing fields: %s", strings.Join(fields, ", "))
		}
		writeFetchError(c, fe)
		return
	}

	logger.Debugf("Download request: host=%s port=%d user=%s remote_path=%s expected=%d",
		req.Connection.Hostname, req.Connection.Port, req.Connection.Username, req.RemotePath, len(req.ExpectedFiles))

	ctx := c.Request.Context()
	if requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := fetchSrv.FetchFiles(ctx, req)
	auditSrv.Record(req, resp, err, time.Since(start))
	if err != nil {
		logger.Errorf("Download from %s:%s failed: %v", req.Connection.Hostname, req.RemotePath, err)
		writeFetchError(c, err)
		return
	}

	logger.Infof("Download request %s finished: %d/%d file(s), %d missing",
		resp.RequestID, resp.Stats.TotalDownloaded, resp.Stats.TotalExpected, resp.Stats.TotalMissing)
	utils.JSONResponse(c, http.StatusOK, resp)
}

// statusForError maps an error category to the HTTP status reported to callers.
func statusForError(err error) int {
	switch fileops.CategoryOf(err) {
	case fileops.CategoryClient, fileops.CategoryListing:
		return http.StatusBadRequest
	case fileops.CategoryConnection:
		switch {
		case errors.Is(err, transfer.ErrAuthentication):
			return http.StatusUnauthorized
		case errors.Is(err, context.DeadlineExceeded):
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeFetchError(c *gin.Context, err error) {
	body := models.ErrorResponse{
		Success:   false,
		Error:     err.Error(),
		Category:  string(fileops.CategoryOf(err)),
		Timestamp: time.Now().UTC(),
	}
	var fe *fileops.FetchError
	if errors.As(err, &fe) {
		body.Fields = fe.Fields
		body.RequestID = fe.RequestID
		body.Logs = fe.Logs
	}
	c.JSON(statusForError(err), body)
}

// RegisterDownloadRoutes registers the download endpoint on rg.
func RegisterDownloadRoutes(rg *gin.RouterGroup) {
	rg.POST("/download-files", downloadFiles)
}
