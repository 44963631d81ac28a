package transfer

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"sftpfetchapi/models"
)

type sftpSession struct {
	ssh  *ssh.Client
	sftp *sftp.Client

	closeOnce sync.Once
	closeErr  error
}

// newSFTPSession wraps an sftp client. sshClient may be nil when the sftp client runs
// over another transport.
func newSFTPSession(sshClient *ssh.Client, sftpClient *sftp.Client) *sftpSession {
	return &sftpSession{ssh: sshClient, sftp: sftpClient}
}

func (s *sftpSession) ReadDir(dirPath string) ([]models.RemoteEntry, error) {
	infos, err := s.sftp.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RemoteEntry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, models.RemoteEntry{
			Name:    fi.Name(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
			IsDir:   fi.IsDir(),
		})
	}
	return entries, nil
}

func (s *sftpSession) ReadFile(filePath string) ([]byte, error) {
	f, err := s.sftp.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	return buf.Bytes(), nil
}

// Close closes the sftp client, then the ssh connection. Repeated calls return the
// first result.
func (s *sftpSession) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.sftp != nil {
			if err := s.sftp.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close sftp client: %w", err))
			}
		}
		if s.ssh != nil {
			if err := s.ssh.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close ssh connection: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
