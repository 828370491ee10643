package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"clear-ai-go/internal/service"
	"clear-ai-go/pkg/log"
	"clear-ai-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// TutorHandler 负责处理 WebSocket 辅导问答连接。
// 每条入站消息是一个独立的学生提问，服务端整帧回写答案，不做流式输出。
type TutorHandler struct {
	tutorService service.TutorService
	jwtManager   *token.JWTManager
}

// NewTutorHandler 创建一个新的 TutorHandler 实例。
func NewTutorHandler(tutorService service.TutorService, jwtManager *token.JWTManager) *TutorHandler {
	return &TutorHandler{tutorService: tutorService, jwtManager: jwtManager}
}

// tutorMessage 入站控制帧结构。纯文本帧（非 JSON）被当作学生提问处理。
type tutorMessage struct {
	QuestionID string `json:"question_id"`
	Message    string `json:"message"`
}

// Handle 处理一个传入的 WebSocket 连接。
// 路径参数是 JWT，浏览器的 WebSocket API 无法自定义请求头。
// 协议：先用 {"question_id": "..."} 帧选择问题，之后每个文本帧是一个提问；
// 带 question_id 的 JSON 帧可以随时切换问题。
func (h *TutorHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("辅导 WebSocket 连接已建立，用户: %s", claims.Username)

	currentQuestionID := ""
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		userText := string(message)
		if len(message) > 0 && message[0] == '{' {
			var msg tutorMessage
			if err := json.Unmarshal(message, &msg); err == nil {
				if msg.QuestionID != "" {
					currentQuestionID = msg.QuestionID
					if msg.Message == "" {
						h.writeJSON(conn, gin.H{"type": "selected", "question_id": currentQuestionID})
						continue
					}
				}
				userText = msg.Message
			}
		}

		if currentQuestionID == "" {
			h.writeJSON(conn, gin.H{"type": "error", "message": "请先发送 {\"question_id\": \"...\"} 选择问题"})
			continue
		}
		if userText == "" {
			h.writeJSON(conn, gin.H{"type": "error", "message": "提问内容不能为空"})
			continue
		}

		exchange, err := h.tutorService.Ask(c.Request.Context(), currentQuestionID, userText)
		if err != nil {
			log.Errorf("辅导问答处理失败, questionID=%s: %v", currentQuestionID, err)
			h.writeJSON(conn, gin.H{"type": "error", "message": "AI服务暂时不可用，请稍后重试"})
			continue
		}

		h.writeJSON(conn, gin.H{
			"type":        "answer",
			"question_id": currentQuestionID,
			"user":        exchange.UserMessage,
			"assistant":   exchange.AIResponse,
			"timestamp":   time.Now().UnixMilli(),
		})
	}
}

func (h *TutorHandler) writeJSON(conn *websocket.Conn, payload gin.H) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Warnf("向 WebSocket 写入消息失败: %v", err)
	}
}
