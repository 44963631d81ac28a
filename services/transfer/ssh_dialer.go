package transfer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"sftpfetchapi/models"
	"sftpfetchapi/pkg/logger"
)

// SSHDialer opens SFTP sessions over SSH with public key authentication.
type SSHDialer struct {
	opts Options
}

// NewSSHDialer creates a dialer; zero option fields fall back to DefaultOptions.
func NewSSHDialer(opts Options) *SSHDialer {
	return &SSHDialer{opts: opts.withDefaults()}
}

// Dial connects, authenticates and starts the sftp subsystem.
// Authentication failures are not retried; other dial errors are retried up to
// ConnectAttempts times.
func (d *SSHDialer) Dial(ctx context.Context, conn models.ConnectionConfig) (Session, error) {
	signer, err := ParseSigner(conn.PrivateKey)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := d.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            conn.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         d.opts.ConnectTimeout,
	}

	addr := net.JoinHostPort(conn.Hostname, strconv.Itoa(conn.Port))

	var client *ssh.Client
	var lastErr error
	for attempt := 1; attempt <= d.opts.ConnectAttempts; attempt++ {
		if attempt > 1 {
			logger.Warnf("ssh connection to %s failed, retrying in %v...", addr, d.opts.RetryDelay)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("ssh connection to %s cancelled: %w", addr, ctx.Err())
			case <-time.After(d.opts.RetryDelay):
			}
		}

		logger.Debugf("ssh connection attempt %d/%d to %s as %s", attempt, d.opts.ConnectAttempts, addr, conn.Username)

		client, lastErr = dialSSH(ctx, addr, config)
		if lastErr == nil {
			break
		}

		if isAuthError(lastErr) {
			logger.Errorf("ssh authentication to %s rejected: %v", addr, lastErr)
			return nil, fmt.Errorf("%w: %v", ErrAuthentication, lastErr)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ssh connection to %s cancelled: %w", addr, ctx.Err())
		}
		logger.Warnf("ssh connection attempt %d/%d to %s failed: %v", attempt, d.opts.ConnectAttempts, addr, lastErr)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("ssh connection to %s failed after %d attempt(s): %w", addr, d.opts.ConnectAttempts, lastErr)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start sftp subsystem on %s: %w", addr, err)
	}

	logger.Infof("sftp session established with %s", addr)
	return newSFTPSession(client, sftpClient), nil
}

func (d *SSHDialer) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if d.opts.KnownHostsFile == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(d.opts.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts %s: %w", d.opts.KnownHostsFile, err)
	}
	return cb, nil
}

// dialSSH is ssh.Dial with the TCP dial and the handshake bound to ctx.
func dialSSH(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := net.Dialer{Timeout: config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	if config.Timeout > 0 {
		conn.SetDeadline(time.Now().Add(config.Timeout))
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})

	return ssh.NewClient(c, chans, reqs), nil
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unable to authenticate") ||
		strings.Contains(errStr, "no supported methods remain")
}
