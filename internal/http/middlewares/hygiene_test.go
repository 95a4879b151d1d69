package middlewares_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/campushub/api/internal/http/middlewares"
)

func setupHygieneRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(mw)
	r.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{name: "post_json", method: http.MethodPost, contentType: "application/json", wantStatus: http.StatusOK},
		{name: "post_json_with_charset", method: http.MethodPost, contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "post_missing_content_type", method: http.MethodPost, contentType: "", wantStatus: http.StatusUnsupportedMediaType},
		{name: "post_form_encoded", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
		{name: "get_without_content_type", method: http.MethodGet, contentType: "", wantStatus: http.StatusOK},
	}

	r := setupHygieneRouter(middlewares.RequireJSON())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/echo", strings.NewReader("{}"))

			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestMaxBodyBytes(t *testing.T) {
	r := setupHygieneRouter(middlewares.MaxBodyBytes(64))

	small := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"ok":true}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, small)

	if w.Code != http.StatusOK {
		t.Fatalf("small body: status = %d, want 200", w.Code)
	}

	big := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(make([]byte, 1024)))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, big)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body: status = %d, want 413, body=%s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), "payload_too_large") {
		t.Fatalf("413 body missing code: %s", w.Body.String())
	}
}
