package fileops

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sftpfetchapi/config"
	"sftpfetchapi/models"
	"sftpfetchapi/pkg/logger"
	"sftpfetchapi/services/transfer"
	"sftpfetchapi/utils"
)

// FetchService retrieves expected files from a remote SFTP directory.
type FetchService interface {
	FetchFiles(ctx context.Context, req models.DownloadRequest) (*models.DownloadResponse, error)
}

// Options configures the orchestrator itself; connection behaviour lives in the Dialer.
type Options struct {
	DefaultPort int
	MaxFileSize int64 // bytes, 0 = unlimited
}

type fetchService struct {
	dialer transfer.Dialer
	opts   Options
}

// NewFetchService creates a fetch service wired to SSH/SFTP from the global config.
func NewFetchService() FetchService {
	opts, dialOpts := OptionsFromConfig(config.Cfg)
	return NewFetchServiceWithDeps(transfer.NewSSHDialer(dialOpts), opts)
}

// NewFetchServiceWithDeps creates a fetch service with an explicit dialer.
func NewFetchServiceWithDeps(dialer transfer.Dialer, opts Options) FetchService {
	if opts.DefaultPort == 0 {
		opts.DefaultPort = 22
	}
	return &fetchService{dialer: dialer, opts: opts}
}

// OptionsFromConfig splits the application config into orchestrator and dialer options.
func OptionsFromConfig(cfg config.AppConfig) (Options, transfer.Options) {
	return Options{
			DefaultPort: cfg.SFTPDefaultPort,
			MaxFileSize: cfg.SFTPMaxFileSize,
		}, transfer.Options{
			ConnectTimeout:  cfg.SFTPConnectTimeout,
			ConnectAttempts: cfg.SFTPConnectAttempts,
			RetryDelay:      cfg.SFTPRetryDelay,
			KnownHostsFile:  cfg.SFTPKnownHostsFile,
		}
}

// FetchFiles opens one session, lists RemotePath, fetches the first listing match of
// every expected token and closes the session on every exit path.
// A failed fetch demotes that token to missing; the request itself still succeeds.
// Returned errors are always *FetchError.
func (s *fetchService) FetchFiles(ctx context.Context, req models.DownloadRequest) (*models.DownloadResponse, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	requestID := uuid.NewString()
	steps := newStepLog(requestID)

	if fields := missingFields(req); len(fields) > 0 {
		steps.warn("rejected request, missing required fields: %s", strings.Join(fields, ", "))
		return nil, &FetchError{
			Category:  CategoryClient,
			Op:        "validate request",
			Fields:    fields,
			Err:       fmt.Errorf("missing required fields: %s", strings.Join(fields, ", ")),
			RequestID: requestID,
			Logs:      steps.lines(),
		}
	}

	conn := req.Connection
	if conn.Port == 0 {
		conn.Port = s.opts.DefaultPort
	}
	conn.PrivateKey = transfer.NormalizePrivateKey(conn.PrivateKey)

	start := time.Now()
	var resp *models.DownloadResponse
	err := s.withSession(ctx, conn, steps, func(session transfer.Session) error {
		var err error
		resp, err = s.collect(ctx, session, req, steps)
		return err
	})
	duration := time.Since(start)

	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			fe = &FetchError{Category: CategoryInternal, Err: err}
		}
		fe.RequestID = requestID
		fe.Logs = steps.lines()
		return nil, fe
	}

	resp.RequestID = requestID
	resp.Success = true
	resp.Complete = len(resp.MissingFiles) == 0
	resp.Stats = buildStats(len(req.ExpectedFiles), resp, duration)
	steps.add("done: %d/%d file(s) downloaded, %d byte(s) in %.2fs",
		resp.Stats.TotalDownloaded, resp.Stats.TotalExpected, resp.Stats.TotalSizeBytes, resp.Stats.DurationSeconds)
	resp.Logs = steps.lines()

	return resp, nil
}

// withSession dials, runs fn and closes the session exactly once. If ctx ends while fn
// runs, the session is closed early to abort in-flight operations.
// Close failures are logged and never override fn's result.
func (s *fetchService) withSession(ctx context.Context, conn models.ConnectionConfig, steps *stepLog, fn func(transfer.Session) error) error {
	steps.add("connecting to %s:%d as %s", conn.Hostname, conn.Port, conn.Username)

	session, err := s.dialer.Dial(ctx, conn)
	if err != nil {
		steps.warn("connection failed: %v", err)
		category := CategoryConnection
		if errors.Is(err, transfer.ErrInvalidKey) {
			category = CategoryClient
		}
		return &FetchError{Category: category, Op: "connect", Err: err}
	}
	steps.add("sftp session established")

	var once sync.Once
	var closeErr error
	closeSession := func() {
		once.Do(func() { closeErr = session.Close() })
	}
	stopAbort := context.AfterFunc(ctx, closeSession)

	defer func() {
		stopAbort()
		closeSession()
		if closeErr != nil {
			steps.warn("session close failed (ignored): %v", closeErr)
			return
		}
		steps.add("session closed")
	}()

	return fn(session)
}

func (s *fetchService) collect(ctx context.Context, session transfer.Session, req models.DownloadRequest, steps *stepLog) (*models.DownloadResponse, error) {
	steps.add("listing %s", req.RemotePath)
	entries, err := session.ReadDir(req.RemotePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled(ctxErr)
		}
		steps.warn("listing %s failed: %v", req.RemotePath, err)
		return nil, &FetchError{Category: CategoryListing, Op: fmt.Sprintf("list %s", req.RemotePath), Err: err}
	}

	names, truncated := entryNames(entries, 10)
	if truncated {
		steps.add("%d entr(ies) available, first: %s...", len(entries), strings.Join(names, ", "))
	} else {
		steps.add("%d entr(ies) available: %s", len(entries), strings.Join(names, ", "))
	}

	resp := &models.DownloadResponse{
		DownloadedFiles: []models.DownloadedFile{},
		MissingFiles:    []string{},
		MissingDetails:  []models.MissingFile{},
	}
	missing := func(expected models.ExpectedFile, reason, detail string) {
		resp.MissingFiles = append(resp.MissingFiles, expected.Filename)
		resp.MissingDetails = append(resp.MissingDetails, models.MissingFile{
			Filename:    expected.Filename,
			Description: expected.Description,
			Reason:      reason,
			Detail:      detail,
		})
	}

	for _, expected := range req.ExpectedFiles {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled(ctxErr)
		}

		entry, ok := MatchEntry(entries, expected.Filename)
		if !ok {
			steps.warn("missing: no entry matches %q", expected.Filename)
			missing(expected, models.MissingReasonNotFound, "")
			continue
		}

		if s.opts.MaxFileSize > 0 && entry.Size > s.opts.MaxFileSize {
			steps.warn("skipping %s: %d bytes exceeds limit of %d", entry.Name, entry.Size, s.opts.MaxFileSize)
			missing(expected, models.MissingReasonTooLarge, fmt.Sprintf("%d bytes exceeds limit of %d", entry.Size, s.opts.MaxFileSize))
			continue
		}

		remotePath := path.Join(req.RemotePath, entry.Name)
		steps.add("downloading %s for %q (%.2f MB)", remotePath, expected.Filename, float64(entry.Size)/(1024*1024))

		fetchStart := time.Now()
		data, err := session.ReadFile(remotePath)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, cancelled(ctxErr)
			}
			steps.warn("download of %s failed, marking %q missing: %v", remotePath, expected.Filename, err)
			missing(expected, models.MissingReasonFetchFailed, err.Error())
			continue
		}

		resp.DownloadedFiles = append(resp.DownloadedFiles, models.DownloadedFile{
			Filename:      entry.Name,
			Expected:      expected.Filename,
			ContentBase64: utils.EncodeBase64(data),
			Size:          int64(len(data)),
			MD5:           utils.CalculateMD5(data),
			ModifiedAt:    entry.ModTime,
			DownloadTime:  time.Now().UTC(),
		})
		steps.add("downloaded %s (%d bytes) in %.2fs", entry.Name, len(data), time.Since(fetchStart).Seconds())
	}

	return resp, nil
}

func cancelled(err error) *FetchError {
	logger.Warnf("download request abandoned: %v", err)
	return &FetchError{Category: CategoryConnection, Op: "request cancelled", Err: err}
}

// missingFields names every mandatory field that is blank, in request order.
func missingFields(req models.DownloadRequest) []string {
	var fields []string
	if strings.TrimSpace(req.Connection.Hostname) == "" {
		fields = append(fields, "connection.hostname")
	}
	if strings.TrimSpace(req.Connection.Username) == "" {
		fields = append(fields, "connection.username")
	}
	if strings.TrimSpace(req.Connection.PrivateKey) == "" {
		fields = append(fields, "connection.private_key")
	}
	if strings.TrimSpace(req.RemotePath) == "" {
		fields = append(fields, "remote_path")
	}
	for i, expected := range req.ExpectedFiles {
		if strings.TrimSpace(expected.Filename) == "" {
			fields = append(fields, fmt.Sprintf("expected_files[%d].filename", i))
		}
	}
	return fields
}

func buildStats(expected int, resp *models.DownloadResponse, duration time.Duration) models.DownloadStats {
	var total int64
	for _, f := range resp.DownloadedFiles {
		total += f.Size
	}
	return models.DownloadStats{
		TotalExpected:   expected,
		TotalDownloaded: len(resp.DownloadedFiles),
		TotalMissing:    len(resp.MissingFiles),
		TotalSizeBytes:  total,
		DurationSeconds: math.Round(duration.Seconds()*100) / 100,
	}
}
