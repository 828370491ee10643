package handler

import (
	"net/http"
	"strconv"

	"clear-ai-go/internal/model"
	"clear-ai-go/internal/service"
	"clear-ai-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// QuestionHandler 负责问题实体的查询、更新、删除以及步骤讲解和辅导问答。
type QuestionHandler struct {
	questionService service.QuestionService
	explainService  service.ExplainService
	tutorService    service.TutorService
}

// NewQuestionHandler 创建一个新的 QuestionHandler 实例。
func NewQuestionHandler(
	questionService service.QuestionService,
	explainService service.ExplainService,
	tutorService service.TutorService,
) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		explainService:  explainService,
		tutorService:    tutorService,
	}
}

// CreateRequest 定义了直接创建问题 API 的请求体结构。
type CreateRequest struct {
	QuestionUnderstanding string   `json:"question_understanding" binding:"required"`
	SolvingStrategy       string   `json:"solving_strategy" binding:"required"`
	SolutionSteps         []string `json:"solution_steps" binding:"required,min=1"`
	ImageS3               string   `json:"image_s3"`
}

// Create 由完整的解析结果直接创建问题，不经过图片解析链路。
func (h *QuestionHandler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Create: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：三个解析字段均不能为空",
		})
		return
	}

	q, err := h.questionService.Create(c.Request.Context(), model.Analysis{
		QuestionUnderstanding: req.QuestionUnderstanding,
		SolvingStrategy:       req.SolvingStrategy,
		SolutionSteps:         req.SolutionSteps,
	}, req.ImageS3)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "success",
		"data":    q,
	})
}

// Get 按 ID 查询问题详情。
func (h *QuestionHandler) Get(c *gin.Context) {
	q, err := h.questionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, q)
}

// List 查询最近的问题列表。
func (h *QuestionHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	questions, err := h.questionService.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, questions)
}

// UpdateRequest 定义了问题更新 API 的请求体结构，缺省字段保持不变。
type UpdateRequest struct {
	QuestionUnderstanding *string  `json:"question_understanding"`
	SolvingStrategy       *string  `json:"solving_strategy"`
	SolutionSteps         []string `json:"solution_steps"`
	Conversations         []string `json:"conversations"`
	ImageS3               *string  `json:"image_s3"`
}

// Update 部分更新问题实体。
func (h *QuestionHandler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Update: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载",
		})
		return
	}

	q, err := h.questionService.Update(c.Request.Context(), c.Param("id"), service.QuestionUpdate{
		QuestionUnderstanding: req.QuestionUnderstanding,
		SolvingStrategy:       req.SolvingStrategy,
		SolutionSteps:         req.SolutionSteps,
		Conversations:         req.Conversations,
		ImageS3:               req.ImageS3,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, q)
}

// Delete 删除问题实体。
func (h *QuestionHandler) Delete(c *gin.Context) {
	if err := h.questionService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// ConversationRequest 定义了追加对话记录 API 的请求体结构。
type ConversationRequest struct {
	Message string `json:"message" binding:"required"`
}

// AppendConversation 向问题追加一条对话记录。
func (h *QuestionHandler) AppendConversation(c *gin.Context) {
	var req ConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("AppendConversation: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：message 不能为空",
		})
		return
	}

	q, err := h.questionService.AppendConversation(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, q)
}

// ExplainRequest 定义了步骤讲解 API 的请求体结构。
type ExplainRequest struct {
	StepNumber int `json:"step_number" binding:"required"`
}

// Explain 针对某个解题步骤生成讲解，结果不落库。
func (h *QuestionHandler) Explain(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：step_number 必须是非零整数",
		})
		return
	}

	q, err := h.questionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	explanation, fallback, err := h.explainService.Explain(c.Request.Context(), q, req.StepNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"explanation":   explanation,
		"fallback_used": fallback,
	})
}

// AskRequest 定义了辅导问答 API 的请求体结构。
type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// Ask 基于问题上下文回答学生提问，并把一问一答写入对话日志。
func (h *QuestionHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Ask: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：message 不能为空",
		})
		return
	}

	exchange, err := h.tutorService.Ask(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, exchange)
}
