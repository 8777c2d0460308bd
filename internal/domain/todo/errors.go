package todo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized 调用者既不是清单所有者也没有提供正确的分享令牌
	ErrUnauthorized = errors.New("unauthorized")
	// ErrListNotFound 清单不存在
	ErrListNotFound = errors.New("list not found")
	// ErrTodoNotFound 待办不存在
	ErrTodoNotFound = errors.New("todo not found")
	// ErrInvalidResponse 模型输出无法解析为合法的结构化响应
	ErrInvalidResponse = errors.New("invalid model response")
)

// FlaggedError 审核未通过，携带违规分类
// 审核失败必须在调用解释器之前中止，并把分类返回给调用方
type FlaggedError struct {
	Categories []string
}

func (e *FlaggedError) Error() string {
	return fmt.Sprintf("prompt was flagged: %s", strings.Join(e.Categories, ", "))
}
