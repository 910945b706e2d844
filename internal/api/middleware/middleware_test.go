package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMethodOverride(t *testing.T) {
	var got string
	h := MethodOverride(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { got = r.Method }))

	cases := []struct {
		method, target, want string
	}{
		{http.MethodPost, "/x?_method=DELETE", http.MethodDelete},
		{http.MethodPost, "/x?_method=put", http.MethodPut},
		{http.MethodPost, "/x?_method=GET", http.MethodPost},
		{http.MethodGet, "/x?_method=DELETE", http.MethodGet},
		{http.MethodPost, "/x", http.MethodPost},
	}
	for _, tc := range cases {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.target, nil))
		assert.Equal(t, tc.want, got, tc.target)
	}
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(0.001, 2)
	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "limits are per ip")
}

func TestIPRateLimiter_ZeroConfigUsesDefaults(t *testing.T) {
	l := NewIPRateLimiter(0, 0)
	for i := 0; i < DefaultRateBurst; i++ {
		require.True(t, l.Allow("1.1.1.1"), i)
	}
	assert.False(t, l.Allow("1.1.1.1"))

	// 5 rps 约 200ms 补充一个令牌
	time.Sleep(300 * time.Millisecond)
	assert.True(t, l.Allow("1.1.1.1"), "bucket refills")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestErrorHandler_JSON(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/api/conflict", func(c *gin.Context) { _ = c.Error(apperr.Conflict("taken")) })
	r.GET("/api/boom", func(c *gin.Context) { _ = c.Error(errors.New("db down")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/conflict", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"taken"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"internal server error"}`, w.Body.String())
}
