package models

import "time"

// DownloadAudit map với bảng download_audits.
// Only request metadata is stored; file content and key material never are.
type DownloadAudit struct {
	ID              uint      `gorm:"primaryKey;column:id" json:"id"`
	RequestID       string    `gorm:"column:request_id;size:36;index" json:"request_id"`
	Hostname        string    `gorm:"column:hostname;size:255" json:"hostname"`
	Port            int       `gorm:"column:port" json:"port"`
	Username        string    `gorm:"column:username;size:255" json:"username"`
	RemotePath      string    `gorm:"column:remote_path;size:1000" json:"remote_path"`
	TotalExpected   int       `gorm:"column:total_expected" json:"total_expected"`
	TotalDownloaded int       `gorm:"column:total_downloaded" json:"total_downloaded"`
	TotalMissing    int       `gorm:"column:total_missing" json:"total_missing"`
	TotalSizeBytes  int64     `gorm:"column:total_size_bytes" json:"total_size_bytes"`
	DurationMs      int64     `gorm:"column:duration_ms" json:"duration_ms"`
	Success         bool      `gorm:"column:success" json:"success"`
	ErrorCategory   string    `gorm:"column:error_category;size:32" json:"error_category,omitempty"`
	ErrorMessage    string    `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName chỉ định tên bảng tĩnh
func (DownloadAudit) TableName() string {
	return "download_audits"
}
