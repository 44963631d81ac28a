package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"Warn", WARN},
		{"error", ERROR},
		{"FATAL", FATAL},
		{"", INFO},
		{"verbose", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, WARN)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN] ")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "[ERROR] ")
	assert.Contains(t, out, "error 4")
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, ERROR)
	l.Infof("hidden")
	assert.Empty(t, buf.String())

	l.SetLevel(DEBUG)
	assert.Equal(t, DEBUG, l.GetLevel())
	l.Debugf("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_ReportsCallerFile(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewWithWriter(&buf, DEBUG))
	t.Cleanup(func() { SetDefault(nil) })

	Infof("from test")
	assert.Contains(t, buf.String(), "logger_test.go")
}

func TestGlobalFunctions_NoInstanceIsNoop(t *testing.T) {
	SetDefault(nil)
	assert.NotPanics(t, func() {
		Debugf("x")
		Infof("x")
		Warnf("x")
		Errorf("x")
		SetLevel(DEBUG)
	})
	assert.Equal(t, INFO, GetLevel())
}

func TestNew_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	l, err := New(Config{Path: path, Level: INFO, MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	require.NoError(t, err)

	l.Infof("persisted line")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "persisted line")
}
