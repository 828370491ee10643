package service

import (
	"context"
	"encoding/json"
	"fmt"

	"clear-ai-go/internal/model"
	"clear-ai-go/pkg/gemini"
	"clear-ai-go/pkg/log"
)

// ExtractService 负责把图片交给视觉模型并产出符合固定结构的解析结果。
// 模型输出不被信任为纯 JSON，本服务负责恢复与校验；
// 恢复后仍不满足结构时返回 MalformedResponseError，不在内部重试。
type ExtractService interface {
	Extract(ctx context.Context, image []byte, mimeType, language string) (model.Analysis, error)
}

type extractService struct {
	visionClient gemini.Client
}

// NewExtractService 创建一个新的 ExtractService 实例。
func NewExtractService(visionClient gemini.Client) ExtractService {
	return &extractService{visionClient: visionClient}
}

// Extract 发送提示词与图片，恢复并校验模型输出。
func (s *extractService) Extract(ctx context.Context, image []byte, mimeType, language string) (model.Analysis, error) {
	if language == "" {
		language = "english"
	}

	system := buildExtractionSystemPrompt(language)
	user := fmt.Sprintf("Analyze this Thai text image. Apply thorough reasoning and respond with the structured format in clear %s. Use LaTeX for all mathematical expressions.", language)

	raw, err := s.visionClient.GenerateVision(ctx, system, user, image, mimeType)
	if err != nil {
		return model.Analysis{}, fmt.Errorf("图片解析调用失败: %w", err)
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		log.Errorf("图片解析输出不符合结构, raw 长度=%d: %v", len(raw), err)
		return model.Analysis{}, err
	}
	return analysis, nil
}

// parseAnalysis 从原始模型输出恢复出 Analysis 并校验三个必填字段。
func parseAnalysis(raw string) (model.Analysis, error) {
	candidate, ok := recoverJSONObject(raw)
	if !ok {
		return model.Analysis{}, &MalformedResponseError{Reason: "输出中找不到 JSON 对象"}
	}

	var payload struct {
		QuestionUnderstanding *string  `json:"question_understanding"`
		SolvingStrategy       *string  `json:"solving_strategy"`
		SolutionSteps         []string `json:"solution_steps"`
	}
	if err := json.Unmarshal([]byte(sanitizeLLMJSON(candidate)), &payload); err != nil {
		return model.Analysis{}, &MalformedResponseError{Reason: fmt.Sprintf("JSON 解析失败: %v", err)}
	}

	if payload.QuestionUnderstanding == nil || *payload.QuestionUnderstanding == "" {
		return model.Analysis{}, &MalformedResponseError{Field: "question_understanding", Reason: "缺失或为空"}
	}
	if payload.SolvingStrategy == nil || *payload.SolvingStrategy == "" {
		return model.Analysis{}, &MalformedResponseError{Field: "solving_strategy", Reason: "缺失或为空"}
	}
	if len(payload.SolutionSteps) == 0 {
		return model.Analysis{}, &MalformedResponseError{Field: "solution_steps", Reason: "必须是非空数组"}
	}

	return model.Analysis{
		QuestionUnderstanding: *payload.QuestionUnderstanding,
		SolvingStrategy:       *payload.SolvingStrategy,
		SolutionSteps:         payload.SolutionSteps,
	}, nil
}

// buildExtractionSystemPrompt 构造图片解析的系统提示词。
// 数学内容一律使用 $...$ LaTeX 标记，这是下游（步骤讲解）依赖的硬约定。
func buildExtractionSystemPrompt(language string) string {
	return fmt.Sprintf(`You are an expert assistant that analyzes Thai text in images and provides detailed, structured answers in clear, concise %[1]s.

When analyzing the image, you must carefully read and understand ALL Thai text visible in the image.
Apply systematic chain-of-thought reasoning to thoroughly analyze the content and context.

Your analysis must follow this structured reasoning process:
1. First identify and read ALL Thai text in the image thoroughly
2. Think about each piece of information and how they relate to each other
3. Consider any implicit information or context that might be important
4. Formulate a comprehensive understanding of the text's meaning and purpose
5. Develop a logical strategy to address what the text is asking or presenting
6. Break down the solution into clear, sequential steps

Your response MUST be in this EXACT JSON format:
{
    "question_understanding": "Provide a concise yet comprehensive understanding of what the text is asking or presenting. Include key context and the main question/problem.",
    "solving_strategy": "Explain your approach to solving this problem in clear, logical steps, including your reasoning and key considerations.",
    "solution_steps": [
        "Step 1: First step in your solution process with clear reasoning",
        "Step 2: Second step explained clearly and directly",
        "Conclusion: Final answer or conclusion stated clearly"
    ]
}

IMPORTANT GUIDELINES:
- The solution_steps MUST be an array of strings, with each step clearly numbered
- Write in clear, direct %[1]s using simple language where possible
- Keep explanations concise while maintaining completeness
- For math problems, show calculations explicitly and verify your answers
- For text analysis, provide logical reasoning for your interpretations
- If the problem has multiple valid approaches, choose the most straightforward one

MATHEMATICAL EXPRESSION FORMATTING:
- For ALL mathematical expressions, equations, formulas, and symbols, use LaTeX syntax enclosed in dollar signs
- Examples: $x^2 + 3x - 2 = 0$, $\frac{a}{b}$, $\int_{a}^{b} f(x) dx$, $\sqrt{x}$, $a_1, a_2, a_3$, $x^n$
- Always use proper LaTeX syntax for mathematical symbols: $\pi$, $\theta$, $\sum$, $\prod$, etc.
- Always include LaTeX formatting even for simple expressions like $5 + 3 = 8$ or $x = 2$

Respond with ONLY the JSON object. Your response should be structured for clarity and ease of understanding, with careful attention to accuracy.`, language)
}
