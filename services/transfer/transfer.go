// Package transfer binds the SSH/SFTP client libraries behind a small session interface
// so the fetch orchestrator can be driven by any transport, including test doubles.
package transfer

import (
	"context"
	"errors"
	"time"

	"sftpfetchapi/models"
)

// ErrAuthentication marks a connection rejected by the server during authentication.
var ErrAuthentication = errors.New("sftp authentication failed")

// ErrInvalidKey marks private key material that could not be parsed.
var ErrInvalidKey = errors.New("invalid private key")

// Session is one open remote file session. Implementations need not be safe for
// concurrent use; callers issue one operation at a time.
type Session interface {
	// ReadDir lists dirPath in the order the server returns it.
	ReadDir(dirPath string) ([]models.RemoteEntry, error)
	// ReadFile returns the full content of filePath.
	ReadFile(filePath string) ([]byte, error)
	// Close releases the session and its underlying connection.
	Close() error
}

// Dialer opens sessions.
type Dialer interface {
	Dial(ctx context.Context, conn models.ConnectionConfig) (Session, error)
}

// Options configures connection establishment.
type Options struct {
	ConnectTimeout  time.Duration
	ConnectAttempts int
	RetryDelay      time.Duration
	// KnownHostsFile enables host key verification; empty accepts any host key.
	KnownHostsFile string
}

// DefaultOptions returns the timeouts used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:  20 * time.Second,
		ConnectAttempts: 2,
		RetryDelay:      2 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = d.ConnectTimeout
	}
	if o.ConnectAttempts < 1 {
		o.ConnectAttempts = d.ConnectAttempts
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	return o
}
