// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"clear-ai-go/internal/repository"
	"clear-ai-go/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError 将业务错误映射为统一的响应结构。
// 模型输出结构异常对外只暴露固定文案，细节只进日志。
func respondError(c *gin.Context, err error) {
	var malformed *service.MalformedResponseError
	switch {
	case errors.Is(err, repository.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    http.StatusNotFound,
			"message": "问题不存在",
		})
	case errors.Is(err, service.ErrInvalidStep):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": err.Error(),
		})
	case errors.As(err, &malformed):
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "模型输出无法解析，请重试",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "服务器内部错误",
		})
	}
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    data,
	})
}
