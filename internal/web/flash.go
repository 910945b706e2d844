package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "flash"

// Flash 一次性提示，读取后即清除
type Flash struct {
	Success string `json:"s,omitempty"`
	Error   string `json:"e,omitempty"`
}

func (f Flash) Empty() bool { return f.Success == "" && f.Error == "" }

// FlashSuccess 设置成功提示
func FlashSuccess(c *gin.Context, msg string) { setFlash(c, Flash{Success: msg}) }

// FlashError 设置错误提示
func FlashError(c *gin.Context, msg string) { setFlash(c, Flash{Error: msg}) }

func setFlash(c *gin.Context, f Flash) {
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", false, true)
}

// PopFlash 读取并清除 flash
func PopFlash(c *gin.Context) Flash {
	var f Flash
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return f
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return f
	}
	_ = json.Unmarshal(raw, &f)
	return f
}
