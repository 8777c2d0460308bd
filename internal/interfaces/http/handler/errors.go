package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	domainTodo "github.com/listwise/backend/internal/domain/todo"
	"github.com/listwise/backend/internal/interfaces/http/response"
)

// fail 把领域错误映射为统一的错误响应
// 未识别的错误一律按内部错误处理，使用调用方给定的业务码和文案
func fail(c *gin.Context, err error, fallbackCode int, fallbackMessage string) {
	var flagged *domainTodo.FlaggedError

	switch {
	case errors.Is(err, domainTodo.ErrUnauthorized):
		response.Error(c, http.StatusForbidden, 403001, "无权访问该清单")
	case errors.Is(err, domainTodo.ErrListNotFound):
		response.Error(c, http.StatusNotFound, 404001, "清单不存在")
	case errors.Is(err, domainTodo.ErrTodoNotFound):
		response.Error(c, http.StatusNotFound, 404002, "待办不存在")
	case errors.As(err, &flagged):
		response.ErrorWithDetail(c, http.StatusUnprocessableEntity, 422001,
			"输入未通过内容审核", strings.Join(flagged.Categories, ", "))
	case errors.Is(err, domainTodo.ErrInvalidResponse):
		response.Error(c, http.StatusBadGateway, 502001, "模型响应格式非法")
	default:
		response.Error(c, http.StatusInternalServerError, fallbackCode, fallbackMessage)
	}
}
