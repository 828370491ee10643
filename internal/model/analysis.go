package model

// Analysis 是图片解析产出的结构化结果（值对象，不落库）。
// 三个字段必须全部存在，且 SolutionSteps 至少包含一个步骤。
type Analysis struct {
	QuestionUnderstanding string   `json:"question_understanding"`
	SolvingStrategy       string   `json:"solving_strategy"`
	SolutionSteps         []string `json:"solution_steps"`
}

// Explanation 是针对某一个解题步骤按需生成的讲解（不持久化）。
type Explanation struct {
	Step        int    `json:"step"`
	StepContent string `json:"step_content"`
	WhyThisWay  string `json:"why_this_way"`
	KeyConcepts string `json:"key_concepts"`
}

// TutorExchange 是一次答疑问答的双方消息。
type TutorExchange struct {
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
}
