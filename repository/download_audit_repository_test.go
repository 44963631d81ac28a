package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sftpfetchapi/models"
)

func newMockRepo(t *testing.T) (DownloadAuditRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	return NewDownloadAuditRepositoryWithDB(db), mock
}

var auditColumns = []string{
	"id", "request_id", "hostname", "port", "username", "remote_path",
	"total_expected", "total_downloaded", "total_missing", "total_size_bytes",
	"duration_ms", "success", "error_category", "error_message", "created_at",
}

func TestCreate_InsertsAudit(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `download_audits`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	audit := &models.DownloadAudit{
		RequestID:  "req-1",
		Hostname:   "sftp.example.com",
		Port:       22,
		Username:   "reports",
		RemotePath: "/outgoing",
		Success:    true,
	}
	require.NoError(t, repo.Create(nil, audit))
	assert.Equal(t, uint(7), audit.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_PropagatesError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `download_audits`").
		WillReturnError(errors.New("table is read only"))
	mock.ExpectRollback()

	err := repo.Create(nil, &models.DownloadAudit{RequestID: "req-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read only")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_NewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows(auditColumns).
		AddRow(2, "req-2", "h", 22, "u", "/a", 1, 1, 0, 10, 120, true, "", "", now).
		AddRow(1, "req-1", "h", 22, "u", "/a", 1, 0, 0, 0, 80, false, "connection", "refused", now.Add(-time.Minute))
	mock.ExpectQuery("SELECT \\* FROM `download_audits` ORDER BY created_at DESC, id DESC LIMIT").
		WillReturnRows(rows)

	audits, err := repo.List(nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, audits, 2)
	assert.Equal(t, "req-2", audits[0].RequestID)
	assert.Equal(t, "connection", audits[1].ErrorCategory)
	assert.False(t, audits[1].Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `download_audits`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(42))

	total, err := repo.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByRequestID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT \\* FROM `download_audits` WHERE request_id = \\?").
		WillReturnRows(sqlmock.NewRows(auditColumns))

	audit, err := repo.GetByRequestID(nil, "missing")
	assert.Nil(t, audit)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_CommitsCountAndList(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `download_audits`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `download_audits`").
		WillReturnRows(sqlmock.NewRows(auditColumns).
			AddRow(1, "req-1", "h", 22, "u", "/a", 0, 0, 0, 0, 5, true, "", "", time.Now()))
	mock.ExpectCommit()

	var total int64
	var audits []models.DownloadAudit
	err := repo.Transaction(func(tx *gorm.DB) error {
		var err error
		if total, err = repo.Count(tx); err != nil {
			return err
		}
		audits, err = repo.List(tx, 0, 10)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, audits, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
