// Package gemini 提供视觉 LLM（图片理解）客户端。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clear-ai-go/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client 定义了视觉模型客户端的接口。
type Client interface {
	// GenerateVision 发送系统提示词、用户提示词和图片，返回模型的原始文本输出。
	GenerateVision(ctx context.Context, system, user string, image []byte, mimeType string) (string, error)
}

type geminiClient struct {
	client *genai.Client
	model  string
}

// NewClient 创建一个新的视觉模型客户端。
// API key 缺失属于启动期配置错误，直接返回 error 由调用方 Fatal。
func NewClient(ctx context.Context, cfg config.GeminiConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key 未配置")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("初始化 Gemini 客户端失败: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &geminiClient{client: cl, model: model}, nil
}

// GenerateVision 调用视觉模型。要求 JSON MIME 输出、温度 0，
// 但模型仍可能返回夹杂说明文字的结果，结构恢复由调用方负责。
func (c *geminiClient) GenerateVision(ctx context.Context, system, user string, image []byte, mimeType string) (string, error) {
	m := c.client.GenerativeModel(c.model)
	temp := float32(0)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	parts := []genai.Part{
		genai.Text(user),
		genai.Blob{MIMEType: mimeType, Data: image},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("调用视觉模型失败: %w", err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", errors.New("视觉模型返回空结果")
	}
	return txt, nil
}

// firstText 取第一个候选中的所有文本分片并拼接。
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
