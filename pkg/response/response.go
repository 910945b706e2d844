package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response 统一 JSON 返回结构
type Response struct {
	Status  string      `json:"status" example:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "", data)
}

// SuccessWithMessage 成功响应并附带提示
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: StatusSuccess, Message: message, Data: data})
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, Response{Status: StatusError, Message: message})
}

func BadRequest(c *gin.Context, message string) { Error(c, http.StatusBadRequest, message) }

func Unauthorized(c *gin.Context, message string) { Error(c, http.StatusUnauthorized, message) }

func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "internal server error")
}
