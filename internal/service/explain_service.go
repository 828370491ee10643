package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"clear-ai-go/internal/model"
	"clear-ai-go/pkg/llm"
	"clear-ai-go/pkg/log"
)

// ExplainService 针对某个解题步骤生成讲解。
// 步骤序号在任何模型调用之前校验；模型输出解析失败时走按段落切分的
// 启发式降级路径，保证两个讲解字段始终非空。讲解结果不落库。
type ExplainService interface {
	// Explain 返回讲解结果；第二个返回值表示是否使用了启发式降级解析。
	Explain(ctx context.Context, q *model.Question, stepNumber int) (model.Explanation, bool, error)
}

type explainService struct {
	llmClient llm.Client
}

// NewExplainService 创建一个新的 ExplainService 实例。
func NewExplainService(llmClient llm.Client) ExplainService {
	return &explainService{llmClient: llmClient}
}

const explainSystemPrompt = `You are an expert tutor explaining one step of a worked solution to a student.
Answer strictly as a JSON object with exactly two keys:
{
    "why_this_way": "Why this step is done this way at this point of the solution.",
    "key_concepts": "The key concepts, rules or formulas this step relies on."
}
Use $...$ LaTeX syntax for all mathematical expressions, matching the notation of the solution.
Respond with ONLY the JSON object, no other text.`

// 启发式降级时填充缺失字段的固定文案。
const (
	genericWhyThisWay  = "This step follows naturally from the solving strategy and the result of the previous step."
	genericKeyConcepts = "The key ideas are described in the solving strategy for this problem."
)

// Explain 校验步骤序号，构造讲解提示词并解析模型输出。
func (s *explainService) Explain(ctx context.Context, q *model.Question, stepNumber int) (model.Explanation, bool, error) {
	total := len(q.SolutionSteps)
	if stepNumber < 1 || stepNumber > total {
		return model.Explanation{}, false, fmt.Errorf("%w: 有效范围为 [1, %d]，实际为 %d", ErrInvalidStep, total, stepNumber)
	}
	stepContent := q.SolutionSteps[stepNumber-1]

	user := fmt.Sprintf(`A problem has been analyzed as follows.

Question understanding:
%s

Solving strategy:
%s

The solution has %d steps. Explain step %d of %d:
%s

Explain why this step is done this way and which key concepts it relies on.`,
		q.QuestionUnderstanding, q.SolvingStrategy, total, stepNumber, total, stepContent)

	raw, err := s.llmClient.ChatJSON(ctx, explainSystemPrompt, user)
	if err != nil {
		return model.Explanation{}, false, fmt.Errorf("步骤讲解调用失败: %w", err)
	}

	why, concepts, fallback := parseExplanation(raw)
	return model.Explanation{
		Step:        stepNumber,
		StepContent: stepContent,
		WhyThisWay:  why,
		KeyConcepts: concepts,
	}, fallback, nil
}

var blankLineSplitter = regexp.MustCompile(`\n\s*\n`)

// parseExplanation 解析讲解输出。JSON 解析失败时按空行切分段落：
// 第一段作为 why_this_way，第二段作为 key_concepts，缺失的段落以固定文案补齐。
// 第三个返回值表示是否使用了降级路径。
func parseExplanation(raw string) (why, concepts string, fallback bool) {
	if candidate, ok := recoverJSONObject(raw); ok {
		var payload struct {
			WhyThisWay  string `json:"why_this_way"`
			KeyConcepts string `json:"key_concepts"`
		}
		if err := json.Unmarshal([]byte(sanitizeLLMJSON(candidate)), &payload); err == nil &&
			payload.WhyThisWay != "" && payload.KeyConcepts != "" {
			return payload.WhyThisWay, payload.KeyConcepts, false
		}
	}

	log.Warnf("步骤讲解输出无法按 JSON 解析，启用段落降级")
	paragraphs := make([]string, 0, 2)
	for _, p := range blankLineSplitter.Split(strings.TrimSpace(raw), -1) {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}

	why = genericWhyThisWay
	concepts = genericKeyConcepts
	if len(paragraphs) >= 1 {
		why = paragraphs[0]
	}
	if len(paragraphs) >= 2 {
		concepts = paragraphs[1]
	}
	return why, concepts, true
}
