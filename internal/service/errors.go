// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"
	"fmt"
)

// ErrInvalidStep 表示调用方给出的步骤序号超出了解题步骤的有效范围。
// 该校验在任何模型调用之前完成。
var ErrInvalidStep = errors.New("步骤序号超出有效范围")

// MalformedResponseError 表示模型输出在恢复处理之后仍然无法满足要求的结构。
// 对图片解析是致命错误；对翻译和步骤讲解则走降级路径，不会向上传播。
type MalformedResponseError struct {
	Field  string // 缺失或非法的字段名，可为空
	Reason string
}

func (e *MalformedResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("模型输出不符合要求的结构: 字段 %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("模型输出不符合要求的结构: %s", e.Reason)
}
