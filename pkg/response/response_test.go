package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func TestSuccessWithMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessWithMessage(c, "done", gin.H{"id": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "done", body["message"])
	assert.Equal(t, float64(1), body["data"].(map[string]any)["id"])
}

func TestError_OmitsData(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, http.StatusForbidden, "nope")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
	assert.JSONEq(t, `{"status":"error","message":"nope"}`, w.Body.String())
}
