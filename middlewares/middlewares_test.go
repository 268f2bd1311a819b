package middlewares

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"littlelemon/logger"
	"littlelemon/policy"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

type stubResolver map[string]policy.Identity

func (s stubResolver) Resolve(_ context.Context, token string) (policy.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return policy.Anonymous, errors.New("bad token")
}

func whoami(c *gin.Context) {
	c.String(http.StatusOK, utils.CurrentIdentity(c).Username)
}

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := stubResolver{"good": {UserID: 1, Username: "alice", Role: policy.RoleCustomer}}

	r := gin.New()
	r.Use(Authenticate(resolver))
	r.GET("/me", whoami)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer", "Bearer good", "alice"},
		{"token prefix", "Token good", "alice"},
		{"lowercase scheme", "bearer good", "alice"},
		{"bad token", "Bearer nope", ""},
		{"no header", "", ""},
		{"wrong scheme", "Basic good", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK || w.Body.String() != tt.want {
				t.Fatalf("got %d %q, want 200 %q", w.Code, w.Body.String(), tt.want)
			}
		})
	}
}

func TestQueryTokenOnlyForWebsocket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := stubResolver{"good": {UserID: 1, Username: "alice", Role: policy.RoleCustomer}}

	r := gin.New()
	r.Use(Authenticate(resolver))
	r.GET("/ws", whoami)

	plain := httptest.NewRecorder()
	r.ServeHTTP(plain, httptest.NewRequest(http.MethodGet, "/ws?token=good", nil))
	if plain.Body.String() != "" {
		t.Fatalf("plain request authenticated from query: %q", plain.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ws?token=good", nil)
	req.Header.Set("Connection", "upgrade")
	req.Header.Set("Upgrade", "websocket")
	upgraded := httptest.NewRecorder()
	r.ServeHTTP(upgraded, req)
	if upgraded.Body.String() != "alice" {
		t.Fatalf("websocket request not authenticated: %q", upgraded.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 2)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/login", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	now = now.Add(visitorIdle + time.Second)
	rl.getLimiter("10.0.0.9")
	if _, ok := rl.visitors["192.0.2.1"]; ok {
		t.Fatal("idle visitor was not swept")
	}
}

func TestRequestLoggerSetsID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer

	r := gin.New()
	r.Use(RequestLogger(logger.NewWithWriter(&buf, "test", "debug")))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	if len(id) != 36 {
		t.Fatalf("request id = %q", id)
	}
	line := buf.String()
	if !strings.Contains(line, id) || !strings.Contains(line, `"status":418`) || !strings.Contains(line, `"path":"/ping"`) {
		t.Fatalf("log line = %s", line)
	}

	const given = "6f1c7f49-4f3e-4f55-9d55-0c7e07f3b1a2"
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, given)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != given {
		t.Fatalf("request id = %q, want %q", got, given)
	}
}
