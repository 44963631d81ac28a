package config

import (
	"context"
	"fmt"

	"sftpfetchapi/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is the global GORM database instance used by the audit trail. Nil when auditing is off.
var DB *gorm.DB

var embedded *EmbeddedMySQL

// ConnectDB establishes the audit database connection for the configured AuditMode.
// AuditModeEmbedded starts an in-process MySQL server first and points GORM at it.
func ConnectDB(ctx context.Context) error {
	switch Cfg.AuditMode {
	case AuditModeOff, "":
		logger.Infof("Audit trail disabled, skipping database connection")
		return nil
	case AuditModeEmbedded:
		srv, err := StartEmbeddedMySQL(ctx, Cfg.DBName)
		if err != nil {
			return fmt.Errorf("failed to start embedded audit database: %w", err)
		}
		embedded = srv
		return openDB(srv.DSN())
	case AuditModeMySQL:
		logger.Infof("Connecting to database %s@%s:%d/%s", Cfg.DBUser, Cfg.DBHost, Cfg.DBPort, Cfg.DBName)
		return openDB(MySQLDSN(Cfg.DBUser, Cfg.DBPass, Cfg.DBHost, Cfg.DBPort, Cfg.DBName))
	default:
		return fmt.Errorf("unknown AUDIT_MODE %q (must be one of: off, mysql, embedded)", Cfg.AuditMode)
	}
}

// MySQLDSN builds a go-sql-driver DSN.
func MySQLDSN(user, pass, host string, port int, name string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, name)
}

func openDB(dsn string) error {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Errorf("GORM connection failed: %v", err)
		return err
	}
	logger.Infof("GORM connected successfully to database %s", Cfg.DBName)

	DB = db
	return nil
}

// CloseDB releases the audit database and stops the embedded server if one was started.
func CloseDB() {
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warnf("Failed to close audit database: %v", err)
			}
		}
		DB = nil
	}
	if embedded != nil {
		if err := embedded.Close(); err != nil {
			logger.Warnf("Failed to stop embedded audit database: %v", err)
		}
		embedded = nil
	}
}
