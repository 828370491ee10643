package service

import (
	"strings"
)

// recoverJSONObject 从模型的原始文本输出中切出候选 JSON：
// 取第一个 '{' 到最后一个 '}' 之间的子串，容忍模型添加的前后缀说明文字。
func recoverJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// sanitizeLLMJSON 对候选 JSON 做宽松解析前的清理：
// 1. 将所有反斜杠翻倍，防止内嵌的 $...$ LaTeX 标记破坏严格解析；
// 2. 转义字符串字面量内部的控制字符，丢弃无法转义的部分。
// 反斜杠翻倍后字符串内不再有转义引号，因此每个引号都切换字符串状态。
func sanitizeLLMJSON(candidate string) string {
	s := strings.ReplaceAll(candidate, `\`, `\\`)

	var b strings.Builder
	b.Grow(len(s))
	inString := false
	for _, r := range s {
		if r == '"' {
			inString = !inString
			b.WriteRune(r)
			continue
		}
		if inString && r < 0x20 {
			switch r {
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
