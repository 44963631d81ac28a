package config

import (
	"context"
	"fmt"
	"net"
	"time"

	sqle "github.com/dolthub/go-mysql-server"
	"github.com/dolthub/go-mysql-server/memory"
	"github.com/dolthub/go-mysql-server/server"
	"github.com/dolthub/go-mysql-server/sql"

	"sftpfetchapi/pkg/logger"
)

// EmbeddedMySQL is an in-process, in-memory MySQL server used as the audit store
// when no external database is configured. Contents are lost on shutdown.
type EmbeddedMySQL struct {
	Server   *server.Server
	Provider *memory.DbProvider
	Port     int
	DBName   string
	cancel   context.CancelFunc
}

// StartEmbeddedMySQL starts a MySQL wire-compatible server on a free localhost port
// with one empty database named dbName, and waits until it accepts connections.
func StartEmbeddedMySQL(ctx context.Context, dbName string) (*EmbeddedMySQL, error) {
	port, err := GetFreePort()
	if err != nil {
		return nil, fmt.Errorf("failed to get free port: %w", err)
	}

	provider := memory.NewDBProvider(memory.NewDatabase(dbName))
	engine := sqle.NewDefault(provider)

	cfg := server.Config{
		Protocol: "tcp",
		Address:  fmt.Sprintf("127.0.0.1:%d", port),
	}

	s, err := server.NewServer(cfg, engine, sql.NewContext, memory.NewSessionBuilder(provider), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	serverCtx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := s.Start(); err != nil {
			logger.Errorf("Embedded MySQL server error: %v", err)
		}
	}()

	go func() {
		<-serverCtx.Done()
		if err := s.Close(); err != nil {
			logger.Warnf("Failed to close embedded MySQL server: %v", err)
		}
	}()

	readyCtx, readyCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readyCancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-readyCtx.Done():
			cancel()
			return nil, fmt.Errorf("embedded MySQL server failed to start within timeout: %w", readyCtx.Err())
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", cfg.Address, 100*time.Millisecond)
			if err == nil {
				conn.Close()
				logger.Infof("Started embedded MySQL audit server on port %d", port)
				return &EmbeddedMySQL{
					Server:   s,
					Provider: provider,
					Port:     port,
					DBName:   dbName,
					cancel:   cancel,
				}, nil
			}
		}
	}
}

// DSN returns the connection string for the embedded server.
func (e *EmbeddedMySQL) DSN() string {
	return MySQLDSN("root", "", "127.0.0.1", e.Port, e.DBName)
}

// Close shuts the server down.
func (e *EmbeddedMySQL) Close() error {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	return nil
}

// GetFreePort finds an available TCP port.
func GetFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}
