// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// 任务动作常量。
const (
	ActionIndex  = "index"
	ActionDelete = "delete"
)

// QuestionIndexTask 表示一个问题索引任务：
// 问题创建/更新后异步写入 Elasticsearch，删除后异步清理索引。
type QuestionIndexTask struct {
	QuestionID string `json:"question_id"`
	Action     string `json:"action"`
}
