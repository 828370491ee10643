package handler

import (
	"io"
	"net/http"
	"strings"

	"clear-ai-go/internal/pipeline"
	"clear-ai-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// 图片大小上限，与移动端拍照的常见体积对齐。
const maxImageSize = 10 << 20 // 10MB

// UploadHandler 负责接收题目图片并触发解析链路。
type UploadHandler struct {
	pipeline pipeline.AnalysisPipeline
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(p pipeline.AnalysisPipeline) *UploadHandler {
	return &UploadHandler{pipeline: p}
}

// Upload 接收 multipart 表单中的图片与目标语言，执行完整解析链路。
// 表单字段：file（图片）、language（目标语言，默认 thai）。
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "缺少 file 字段",
		})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "图片大小超过限制",
		})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "只支持图片文件",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, err)
		return
	}

	language := c.DefaultPostForm("language", "thai")
	log.Infof("收到图片解析请求, fileName=%s, size=%d, language=%s", fileHeader.Filename, fileHeader.Size, language)

	result, err := h.pipeline.Submit(c.Request.Context(), data, contentType, fileHeader.Filename, language)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "success",
		"data": gin.H{
			"question":   result.Question,
			"translated": result.Translated,
		},
	})
}
