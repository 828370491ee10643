package handler

import (
	"net/http"
	"strconv"

	"clear-ai-go/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler 负责问题全文检索的 API 请求。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search 在已索引的问题上执行关键词检索。
// 查询参数：q（关键词，必填）、limit（返回条数，默认 10）。
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "缺少查询参数 q",
		})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	results, err := h.searchService.SearchQuestions(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, results)
}
