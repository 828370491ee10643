// Package model 包含了应用的数据模型定义。
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Question 定义了 questions 表的 ORM 模型。
// 它保存一次图片解析的完整结构化结果，以及后续互动答疑的对话记录。
// conversations 是只追加的日志，每条形如 "User: ..." 或 "Assistant: ..."，
// 插入顺序即语义顺序。
type Question struct {
	QuestionID            string    `gorm:"primaryKey;type:varchar(64)" json:"question_id"`
	QuestionUnderstanding string    `gorm:"type:text;not null" json:"question_understanding"`
	SolvingStrategy       string    `gorm:"type:text;not null" json:"solving_strategy"`
	SolutionSteps         []string  `gorm:"serializer:json;type:text" json:"solution_steps"`
	Conversations         []string  `gorm:"serializer:json;type:text" json:"conversations"`
	ImageS3               string    `gorm:"type:varchar(512)" json:"image_s3"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Question) TableName() string {
	return "questions"
}

// GenerateQuestionID 生成一个唯一的问题 ID，形如 q_3f2a91bc_1714032000。
func GenerateQuestionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("q_%s_%d", hex[:8], time.Now().Unix())
}

// ConversationUserPrefix 与 ConversationAssistantPrefix 是对话日志的角色标记。
// 对话条目必须成对追加，保证日志中不会留下未回答的用户消息。
const (
	ConversationUserPrefix      = "User: "
	ConversationAssistantPrefix = "Assistant: "
)
