package service

// WindowConversations 返回对话日志中最近的 limit 条记录，保持原始顺序。
// 记录不足 limit 条时全部返回；limit 不为正时返回空切片。
// 纯函数，无副作用。
func WindowConversations(conversations []string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	if len(conversations) <= limit {
		return conversations
	}
	return conversations[len(conversations)-limit:]
}
