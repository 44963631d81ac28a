package repository

import (
	"sftpfetchapi/config"
	"sftpfetchapi/models"

	"gorm.io/gorm"
)

// DownloadAuditRepository provides data access operations for download audit records.
type DownloadAuditRepository interface {
	BaseRepository
	AutoMigrate() error
	Create(tx *gorm.DB, audit *models.DownloadAudit) error
	GetByRequestID(tx *gorm.DB, requestID string) (*models.DownloadAudit, error)
	List(tx *gorm.DB, offset, limit int) ([]models.DownloadAudit, error)
	Count(tx *gorm.DB) (int64, error)
}

type downloadAuditRepository struct {
	baseRepository
}

// NewDownloadAuditRepository creates a repository on the global audit database.
// Returns nil when auditing is disabled.
func NewDownloadAuditRepository() DownloadAuditRepository {
	if config.DB == nil {
		return nil
	}
	return NewDownloadAuditRepositoryWithDB(config.DB)
}

// NewDownloadAuditRepositoryWithDB creates a repository on an explicit connection.
func NewDownloadAuditRepositoryWithDB(db *gorm.DB) DownloadAuditRepository {
	return &downloadAuditRepository{baseRepository{db: db}}
}

func (r *downloadAuditRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&models.DownloadAudit{})
}

func (r *downloadAuditRepository) Create(tx *gorm.DB, audit *models.DownloadAudit) error {
	return r.conn(tx).Create(audit).Error
}

func (r *downloadAuditRepository) GetByRequestID(tx *gorm.DB, requestID string) (*models.DownloadAudit, error) {
	var audit models.DownloadAudit
	if err := r.conn(tx).Where("request_id = ?", requestID).First(&audit).Error; err != nil {
		return nil, err
	}
	return &audit, nil
}

// List returns audits newest first.
func (r *downloadAuditRepository) List(tx *gorm.DB, offset, limit int) ([]models.DownloadAudit, error) {
	var audits []models.DownloadAudit
	err := r.conn(tx).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&audits).Error
	if err != nil {
		return nil, err
	}
	return audits, nil
}

func (r *downloadAuditRepository) Count(tx *gorm.DB) (int64, error) {
	var total int64
	if err := r.conn(tx).Model(&models.DownloadAudit{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
