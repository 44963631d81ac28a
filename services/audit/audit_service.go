// Package audit records the outcome of every download request and serves the history.
// Only request metadata is stored: never key material or file content.
package audit

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"sftpfetchapi/models"
	"sftpfetchapi/pkg/logger"
	"sftpfetchapi/repository"
	"sftpfetchapi/services/fileops"
)

// ErrDisabled is returned by read operations when no audit store is configured.
var ErrDisabled = errors.New("download audit is disabled")

// ErrNotFound is returned when no audit exists for a request ID.
var ErrNotFound = errors.New("download audit not found")

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// HistoryPage is one page of audits, newest first.
type HistoryPage struct {
	Audits     []models.DownloadAudit `json:"audits"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// AuditService records download outcomes.
type AuditService interface {
	Enabled() bool
	Record(req models.DownloadRequest, resp *models.DownloadResponse, fetchErr error, duration time.Duration)
	History(page, pageSize int) (*HistoryPage, error)
	Get(requestID string) (*models.DownloadAudit, error)
}

type auditService struct {
	repo repository.DownloadAuditRepository
}

// NewAuditService creates an audit service on the global audit database.
func NewAuditService() AuditService {
	return NewAuditServiceWithDeps(repository.NewDownloadAuditRepository())
}

// NewAuditServiceWithDeps creates an audit service with an explicit repository.
// A nil repository yields a service that records nothing.
func NewAuditServiceWithDeps(repo repository.DownloadAuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Enabled() bool {
	return s.repo != nil
}

// Record stores one audit row. Failures are logged and never reach the caller.
func (s *auditService) Record(req models.DownloadRequest, resp *models.DownloadResponse, fetchErr error, duration time.Duration) {
	if s.repo == nil {
		return
	}

	audit := &models.DownloadAudit{
		Hostname:      req.Connection.Hostname,
		Port:          req.Connection.Port,
		Username:      req.Connection.Username,
		RemotePath:    req.RemotePath,
		TotalExpected: len(req.ExpectedFiles),
		DurationMs:    duration.Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}

	if resp != nil {
		audit.RequestID = resp.RequestID
		audit.Success = resp.Success
		audit.TotalDownloaded = resp.Stats.TotalDownloaded
		audit.TotalMissing = resp.Stats.TotalMissing
		audit.TotalSizeBytes = resp.Stats.TotalSizeBytes
	}
	if fetchErr != nil {
		audit.Success = false
		audit.ErrorCategory = string(fileops.CategoryOf(fetchErr))
		audit.ErrorMessage = fetchErr.Error()
		var fe *fileops.FetchError
		if errors.As(fetchErr, &fe) && audit.RequestID == "" {
			audit.RequestID = fe.RequestID
		}
	}

	if err := s.repo.Create(nil, audit); err != nil {
		logger.Errorf("Failed to record download audit for request %s: %v", audit.RequestID, err)
		return
	}
	logger.Debugf("Recorded download audit id=%d request=%s", audit.ID, audit.RequestID)
}

// History returns one page of audits. Out-of-range pages yield an empty list, not an error.
func (s *auditService) History(page, pageSize int) (*HistoryPage, error) {
	if s.repo == nil {
		return nil, ErrDisabled
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	result := &HistoryPage{Page: page, PageSize: pageSize, Audits: []models.DownloadAudit{}}
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		total, err := s.repo.Count(tx)
		if err != nil {
			return err
		}
		result.Total = total
		result.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))

		offset := (page - 1) * pageSize
		if int64(offset) >= total {
			return nil
		}
		audits, err := s.repo.List(tx, offset, pageSize)
		if err != nil {
			return err
		}
		result.Audits = audits
		return nil
	})
	if err != nil {
		logger.Errorf("Failed to load download history page=%d size=%d: %v", page, pageSize, err)
		return nil, err
	}
	return result, nil
}

func (s *auditService) Get(requestID string) (*models.DownloadAudit, error) {
	if s.repo == nil {
		return nil, ErrDisabled
	}
	audit, err := s.repo.GetByRequestID(nil, requestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return audit, err
}
