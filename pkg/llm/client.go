// Package llm provides a client for chat-completion Large Language Models.
package llm

import (
	"context"
	"errors"
	"fmt"

	"clear-ai-go/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

// Client 定义了文本 LLM 客户端的接口。
// 翻译、步骤讲解与互动答疑都通过它调用模型。
type Client interface {
	// ChatJSON 发送 system+user 消息并要求模型以 JSON 对象作答。
	ChatJSON(ctx context.Context, system, user string) (string, error)
	// Chat 发送 system+user 消息并返回自由文本回答。
	Chat(ctx context.Context, system, user string, maxTokens int) (string, error)
}

type openaiClient struct {
	client *openai.Client
	model  string
}

// NewClient 根据配置创建一个新的文本 LLM 客户端。
// API key 缺失属于启动期配置错误，直接返回 error 由调用方 Fatal。
func NewClient(cfg config.OpenAIConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key 未配置")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	return &openaiClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// ChatJSON 调用聊天接口并开启 json_object 响应格式。
// 注意：response_format 只是提示，模型偶尔仍会返回包裹文本，调用方需自行恢复。
func (c *openaiClient) ChatJSON(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("调用聊天接口失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("聊天接口返回空结果")
	}
	return resp.Choices[0].Message.Content, nil
}

// Chat 调用聊天接口返回自由文本。
func (c *openaiClient) Chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("调用聊天接口失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("聊天接口返回空结果")
	}
	return resp.Choices[0].Message.Content, nil
}
