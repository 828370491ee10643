package service

import (
	"context"
	"encoding/json"
	"fmt"

	"clear-ai-go/internal/model"
	"clear-ai-go/pkg/llm"
	"clear-ai-go/pkg/log"
)

// TranslateService 把结构化解析结果整体翻译为目标语言，保持键名、结构与步骤数不变。
// 翻译失败从不中断整体流程：任何错误都只记录日志并原样返回输入。
type TranslateService interface {
	// Translate 返回翻译后的结果；第二个返回值表示是否真的完成了翻译
	// （false 即降级返回了原文）。
	Translate(ctx context.Context, analysis model.Analysis, targetLanguage string) (model.Analysis, bool)
}

type translateService struct {
	llmClient llm.Client
}

// NewTranslateService 创建一个新的 TranslateService 实例。
func NewTranslateService(llmClient llm.Client) TranslateService {
	return &translateService{llmClient: llmClient}
}

const translateSystemPrompt = `You are a professional translator specializing in educational content and technical explanations.
Your task is to translate an English analysis into clear, natural language as requested.

Follow these steps to produce high-quality translations:
1. Read and understand the complete English text in each section
2. Think about how to express each concept naturally in the target language
3. Consider educational terminology and problem-solving vocabulary
4. Translate step-by-step, maintaining the logical flow and clarity
5. Verify technical accuracy and educational value are preserved

The input has three sections:
1. "question_understanding" - Translate this comprehensively while maintaining all details
2. "solving_strategy" - Translate the complete strategy and reasoning
3. "solution_steps" - Translate each step precisely, maintaining the step-by-step format

Your output must maintain the exact same JSON structure but with translated content.`

// Translate 调用文本模型翻译整个结构化对象。
func (s *translateService) Translate(ctx context.Context, analysis model.Analysis, targetLanguage string) (model.Analysis, bool) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		log.Errorf("序列化解析结果失败，跳过翻译: %v", err)
		return analysis, false
	}

	user := fmt.Sprintf(`Translate this English analysis into clear, natural %[1]s.

IMPORTANT RULES:
- Translate all natural-language text to %[1]s
- Keep the exact same JSON structure and field names
- For "solution_steps", maintain the array format with the same number of steps
- Keep "Step 1:", "Step 2:", etc. at the beginning of each step
- Keep all $...$ LaTeX markup unchanged
- Make the translation clear, natural, and educational

JSON to translate:
%s

Return ONLY valid JSON with the translations.`, targetLanguage, string(payload))

	raw, err := s.llmClient.ChatJSON(ctx, translateSystemPrompt, user)
	if err != nil {
		log.Errorf("翻译调用失败，返回原文: %v", err)
		return analysis, false
	}

	translated, err := parseAnalysis(raw)
	if err != nil {
		log.Errorf("翻译输出不符合结构，返回原文: %v", err)
		return analysis, false
	}
	return translated, true
}
