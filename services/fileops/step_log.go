package fileops

import (
	"fmt"
	"time"

	"sftpfetchapi/pkg/logger"
)

// stepLog collects the timestamped per-request messages returned to the caller and
// mirrors each one to the service log. Messages must never include key material.
type stepLog struct {
	requestID string
	entries   []string
}

func newStepLog(requestID string) *stepLog {
	return &stepLog{requestID: requestID, entries: []string{}}
}

func (l *stepLog) add(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.entries = append(l.entries, fmt.Sprintf("[%s] %s", time.Now().UTC().Format("15:04:05"), msg))
	logger.Infof("[%s] %s", l.requestID, msg)
}

func (l *stepLog) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.entries = append(l.entries, fmt.Sprintf("[%s] %s", time.Now().UTC().Format("15:04:05"), msg))
	logger.Warnf("[%s] %s", l.requestID, msg)
}

func (l *stepLog) lines() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}
