package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
)

func TestTemplates_RenderPages(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	base := func(extra gin.H) gin.H {
		h := gin.H{"Title": "", "Viewer": model.Identity{ID: 1, Account: "user1"}, "Flash": Flash{Success: "ok"}}
		for k, v := range extra {
			h[k] = v
		}
		return h
	}

	cases := map[string]gin.H{
		"signin":   base(nil),
		"signup":   base(gin.H{"Account": "a", "Name": "n", "Email": "e@example.com"}),
		"settings": base(gin.H{"User": &model.User{ID: 1, Account: "user1", Name: "U", Email: "u@example.com"}}),
		"error":    base(gin.H{"Status": 404, "Message": "tweet doesn't exist"}),
	}
	for name, data := range cases {
		var buf bytes.Buffer
		require.NoError(t, tmpl.ExecuteTemplate(&buf, name, data), name)
		assert.Contains(t, buf.String(), "ok", name)
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "error", base(gin.H{"Status": 404, "Message": "<b>x</b>"})))
	assert.Contains(t, buf.String(), "&lt;b&gt;x&lt;/b&gt;")
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "just now", humanize(10*time.Second))
	assert.Equal(t, "5 minutes ago", humanize(5*time.Minute))
	assert.Equal(t, "3 hours ago", humanize(3*time.Hour))
	assert.Equal(t, "2 days ago", humanize(49*time.Hour))
}

func TestFlash_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	FlashError(c, "passwords do not match")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(cookies[0])

	f := PopFlash(c2)
	assert.Equal(t, "passwords do not match", f.Error)
	assert.Empty(t, f.Success)
	require.Len(t, w2.Result().Cookies(), 1)
	assert.Equal(t, -1, w2.Result().Cookies()[0].MaxAge)

	w3 := httptest.NewRecorder()
	c3, _ := gin.CreateTestContext(w3)
	c3.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, PopFlash(c3).Empty())
}
