package controllers

import "sftpfetchapi/models"

// Response models for Swagger documentation

// PaginationMetadata contains pagination information
type PaginationMetadata struct {
	Total      int64 `json:"total" example:"42"`
	Page       int   `json:"page" example:"1"`
	PageSize   int   `json:"page_size" example:"10"`
	TotalPages int   `json:"total_pages" example:"5"`
}

// HistoryListResponse represents one page of the download audit trail
type HistoryListResponse struct {
	Success    bool                   `json:"success" example:"true"`
	Data       []models.DownloadAudit `json:"data"`
	Pagination PaginationMetadata     `json:"pagination"`
}

// HistoryEntryResponse represents a single download audit
type HistoryEntryResponse struct {
	Success bool                  `json:"success" example:"true"`
	Data    *models.DownloadAudit `json:"data"`
}

// HistoryErrorResponse represents an audit lookup failure
type HistoryErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"download audit is disabled"`
}
