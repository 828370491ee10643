package service

import (
	"context"
	"fmt"
	"strings"

	"clear-ai-go/internal/model"
	"clear-ai-go/pkg/llm"
	"clear-ai-go/pkg/log"
)

// TutorService 提供基于已解析问题的辅导问答。
// 回答只依据问题的理解、策略、步骤与既有对话，不引入外部知识；
// 模型调用失败时对话日志保持不变。
type TutorService interface {
	Ask(ctx context.Context, questionID, userText string) (*model.TutorExchange, error)
}

type tutorService struct {
	questionService QuestionService
	llmClient       llm.Client
	historyWindow   int
	maxAnswerTokens int
}

// NewTutorService 创建一个新的 TutorService 实例。
func NewTutorService(questionService QuestionService, llmClient llm.Client, historyWindow, maxAnswerTokens int) TutorService {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	if maxAnswerTokens <= 0 {
		maxAnswerTokens = 512
	}
	return &tutorService{
		questionService: questionService,
		llmClient:       llmClient,
		historyWindow:   historyWindow,
		maxAnswerTokens: maxAnswerTokens,
	}
}

const tutorSystemPrompt = `You are a patient tutor helping a student understand a problem that has already been analyzed.
Ground every answer ONLY in the provided question understanding, solving strategy, solution steps and conversation so far.
Do not introduce outside facts or solve a different problem.
Answer in 1-3 sentences, in the same language the analysis is written in.
Use $...$ LaTeX syntax for any mathematical expressions.`

// Ask 基于问题上下文回答学生提问，并把一问一答追加到对话日志。
func (s *tutorService) Ask(ctx context.Context, questionID, userText string) (*model.TutorExchange, error) {
	q, err := s.questionService.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}

	user := s.buildTutorPrompt(q, userText)
	answer, err := s.llmClient.Chat(ctx, tutorSystemPrompt, user, s.maxAnswerTokens)
	if err != nil {
		log.Errorf("辅导问答调用失败, questionID=%s: %v", questionID, err)
		return nil, fmt.Errorf("辅导问答调用失败: %w", err)
	}
	answer = strings.TrimSpace(answer)

	if _, err := s.questionService.AppendExchange(ctx, questionID,
		model.ConversationUserPrefix+userText,
		model.ConversationAssistantPrefix+answer); err != nil {
		return nil, err
	}

	return &model.TutorExchange{UserMessage: userText, AIResponse: answer}, nil
}

// buildTutorPrompt 构造问答提示词：完整枚举所有步骤，对话只带最近的窗口。
func (s *tutorService) buildTutorPrompt(q *model.Question, userText string) string {
	var b strings.Builder
	b.WriteString("The problem has been analyzed as follows.\n\n")
	b.WriteString("Question understanding:\n")
	b.WriteString(q.QuestionUnderstanding)
	b.WriteString("\n\nSolving strategy:\n")
	b.WriteString(q.SolvingStrategy)
	b.WriteString("\n\nSolution steps:\n")
	for i, step := range q.SolutionSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	recent := WindowConversations(q.Conversations, s.historyWindow)
	if len(recent) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, entry := range recent {
			b.WriteString(entry)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nStudent question: ")
	b.WriteString(userText)
	return b.String()
}
