package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "sftp-microservice"

// Version is overridden at build time with -ldflags "-X sftpfetchapi/config.Version=...".
var Version = "1.0.0"

// Audit storage modes.
const (
	AuditModeOff      = "off"
	AuditModeMySQL    = "mysql"
	AuditModeEmbedded = "embedded"
)

// AppConfig holds application configuration loaded from environment variables and .env file.
type AppConfig struct {
	// HTTP server
	Port           string
	GinMode        string
	RequestTimeout time.Duration // Upper bound for one download request, connect to close

	// Logging config
	LogLevel      string
	LogFile       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool

	// SFTP session config
	SFTPDefaultPort     int
	SFTPConnectTimeout  time.Duration
	SFTPConnectAttempts int
	SFTPRetryDelay      time.Duration
	SFTPKnownHostsFile  string // Empty accepts any host key
	SFTPMaxFileSize     int64  // bytes, 0 = unlimited

	// Audit trail
	AuditMode string

	// Database config (AuditMode=mysql)
	DBHost string
	DBPort int
	DBUser string
	DBPass string
	DBName string
}

// Cfg is the global application configuration instance.
var Cfg AppConfig

// LoadConfig loads and validates application configuration from .env file and environment variables.
func LoadConfig() error {
	err := godotenv.Load()
	if err != nil {
		// Use standard log here since logger is not initialized yet
		log.Printf("[WARN] .env file not found or cannot be loaded: %v", err)
	} else {
		log.Printf("[INFO] .env file loaded successfully")
	}

	Cfg.Port = getEnv("PORT", "8000")
	Cfg.GinMode = getEnv("GIN_MODE", "release")
	Cfg.RequestTimeout = time.Duration(getEnvInt("REQUEST_TIMEOUT", 120)) * time.Second // Default: 120 seconds

	Cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")
	Cfg.LogFile = getEnv("LOG_FILE", "/var/log/sftpfetch/sftpfetchapi.log")
	Cfg.LogMaxSize = getEnvInt("LOG_MAX_SIZE", 10)
	Cfg.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", 3)
	Cfg.LogMaxAge = getEnvInt("LOG_MAX_AGE", 28)
	Cfg.LogCompress = getEnvBool("LOG_COMPRESS", true)

	Cfg.SFTPDefaultPort = getEnvInt("SFTP_DEFAULT_PORT", 22)
	Cfg.SFTPConnectTimeout = time.Duration(getEnvInt("SFTP_CONNECT_TIMEOUT", 20)) * time.Second // Default: 20 seconds
	Cfg.SFTPConnectAttempts = getEnvInt("SFTP_CONNECT_ATTEMPTS", 2)
	Cfg.SFTPRetryDelay = time.Duration(getEnvInt("SFTP_RETRY_DELAY", 2)) * time.Second
	Cfg.SFTPKnownHostsFile = getEnv("SFTP_KNOWN_HOSTS", "")
	Cfg.SFTPMaxFileSize = int64(getEnvInt("SFTP_MAX_FILE_SIZE_MB", 100)) * 1024 * 1024

	Cfg.AuditMode = strings.ToLower(getEnv("AUDIT_MODE", AuditModeOff))

	Cfg.DBHost = getEnv("DB_HOST", "127.0.0.1")
	Cfg.DBUser = getEnv("DB_USER", "root")
	Cfg.DBPass = getEnv("DB_PASS", "")
	Cfg.DBName = getEnv("DB_NAME", "sftpfetch")
	Cfg.DBPort = getEnvInt("DB_PORT", 3306)

	switch Cfg.AuditMode {
	case AuditModeOff, AuditModeMySQL, AuditModeEmbedded:
	default:
		return fmt.Errorf("invalid AUDIT_MODE %q: must be one of %s, %s, %s",
			Cfg.AuditMode, AuditModeOff, AuditModeMySQL, AuditModeEmbedded)
	}
	if Cfg.SFTPConnectAttempts < 1 {
		return fmt.Errorf("SFTP_CONNECT_ATTEMPTS must be at least 1, got %d", Cfg.SFTPConnectAttempts)
	}

	log.Printf("[INFO] Config loaded - Port: %s, LogLevel: %s, AuditMode: %s",
		Cfg.Port, Cfg.LogLevel, Cfg.AuditMode)
	log.Printf("[INFO] SFTP config - DefaultPort: %d, ConnectTimeout: %v, Attempts: %d, RetryDelay: %v, KnownHosts: %q",
		Cfg.SFTPDefaultPort, Cfg.SFTPConnectTimeout, Cfg.SFTPConnectAttempts, Cfg.SFTPRetryDelay, Cfg.SFTPKnownHostsFile)

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

// AuditEnabled reports whether download requests should be recorded.
func AuditEnabled() bool {
	return Cfg.AuditMode == AuditModeMySQL || Cfg.AuditMode == AuditModeEmbedded
}
