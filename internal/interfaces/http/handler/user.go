package handler

import (
	appTodo "github.com/listwise/backend/internal/application/todo"
	"github.com/listwise/backend/internal/interfaces/http/middleware"
	"github.com/listwise/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service *appTodo.ListService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(service *appTodo.ListService) *UserHandler {
	return &UserHandler{service: service}
}

// UserDTO 用户 DTO
type UserDTO struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
}

// Sync 同步当前用户
// 身份提供方认证完成后调用一次，确保本地用户记录存在；幂等
// @Summary 同步用户
// @Tags 用户
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /users/sync [post]
func (h *UserHandler) Sync(c *gin.Context) {
	u, err := h.service.SyncUser(middleware.Subject(c))
	if err != nil {
		fail(c, err, 803001, "同步用户失败")
		return
	}
	response.Success(c, UserDTO{ID: u.ID, Subject: u.Subject})
}
