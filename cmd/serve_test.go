package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"sftpfetchapi/services/audit"
)

func TestNewRouter_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newRouter(audit.NewAuditServiceWithDeps(nil))

	tests := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/downloads/history", http.StatusServiceUnavailable},
		{http.MethodGet, "/swagger/doc.json", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestNewRouter_CORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newRouter(audit.NewAuditServiceWithDeps(nil))

	req := httptest.NewRequest(http.MethodOptions, "/api/download-files", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
