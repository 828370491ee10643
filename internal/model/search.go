package model

// QuestionDocument 问题在 Elasticsearch 中的文档结构。
type QuestionDocument struct {
	QuestionID            string   `json:"question_id"`
	QuestionUnderstanding string   `json:"question_understanding"`
	SolvingStrategy       string   `json:"solving_strategy"`
	SolutionSteps         []string `json:"solution_steps"`
	CreatedAt             string   `json:"created_at"`
}

// QuestionSearchHit 搜索接口返回的单条命中结果。
type QuestionSearchHit struct {
	QuestionID            string  `json:"question_id"`
	QuestionUnderstanding string  `json:"question_understanding"`
	SolvingStrategy       string  `json:"solving_strategy"`
	Score                 float64 `json:"score"`
}
