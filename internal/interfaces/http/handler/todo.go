package handler

import (
	"net/http"
	"strconv"

	appTodo "github.com/listwise/backend/internal/application/todo"
	domainTodo "github.com/listwise/backend/internal/domain/todo"
	"github.com/listwise/backend/internal/interfaces/http/middleware"
	"github.com/listwise/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// TodoHandler 待办事项处理器
type TodoHandler struct {
	service *appTodo.Service
}

// NewTodoHandler 创建待办事项处理器
func NewTodoHandler(service *appTodo.Service) *TodoHandler {
	return &TodoHandler{service: service}
}

// TodoDTO 待办事项 DTO
type TodoDTO struct {
	ID        string `json:"id"`
	ListID    string `json:"listId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Position  int    `json:"position"`
}

// AddTodoRequest 添加待办请求
type AddTodoRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateTodoRequest 更新待办请求
// completed 和 title 至少提供一个
type UpdateTodoRequest struct {
	Completed *bool   `json:"completed"`
	Title     *string `json:"title"`
}

// ToggleAllRequest 批量切换请求
type ToggleAllRequest struct {
	Completed bool `json:"completed"`
}

// toDTO 将领域模型转换为 DTO
func toDTO(item *domainTodo.TodoItem) *TodoDTO {
	return &TodoDTO{
		ID:        item.ID,
		ListID:    item.ListID,
		Title:     item.Title,
		Completed: item.Completed,
		Position:  item.Position,
	}
}

// toDTOs 批量转换
func toDTOs(items []*domainTodo.TodoItem) []*TodoDTO {
	dtos := make([]*TodoDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toDTO(item))
	}
	return dtos
}

// List 获取清单下的待办
// @Summary 获取待办列表
// @Tags 待办
// @Accept json
// @Produce json
// @Param id path string true "清单ID"
// @Param share_id query string false "分享令牌"
// @Param completed query bool false "按完成状态过滤"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /lists/{id}/todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	var completed *bool
	if raw := c.Query("completed"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, 100001, "参数错误")
			return
		}
		completed = &value
	}

	items, err := h.service.ListTodos(
		middleware.Subject(c), c.Param("id"), c.Query("share_id"), completed,
	)
	if err != nil {
		fail(c, err, 800001, "获取待办列表失败")
		return
	}

	response.Success(c, toDTOs(items))
}

// Add 添加待办
// @Summary 添加待办
// @Tags 待办
// @Accept json
// @Produce json
// @Param id path string true "清单ID"
// @Param share_id query string false "分享令牌"
// @Param body body AddTodoRequest true "待办内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /lists/{id}/todos [post]
func (h *TodoHandler) Add(c *gin.Context) {
	var req AddTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	item, err := h.service.Add(
		middleware.Subject(c), c.Param("id"), c.Query("share_id"), req.Title,
	)
	if err != nil {
		fail(c, err, 800002, "添加待办失败")
		return
	}
	if item == nil {
		// 输入过短被静默忽略
		response.Success(c, nil)
		return
	}

	response.Success(c, toDTO(item))
}

// Update 更新单条待办（完成状态或标题）
// @Summary 更新待办
// @Tags 待办
// @Accept json
// @Produce json
// @Param id path string true "待办ID"
// @Param share_id query string false "分享令牌"
// @Param body body UpdateTodoRequest true "更新内容"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /todos/{id} [patch]
func (h *TodoHandler) Update(c *gin.Context) {
	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}
	if req.Completed == nil && req.Title == nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	subject := middleware.Subject(c)
	todoID := c.Param("id")
	shareID := c.Query("share_id")

	var item *domainTodo.TodoItem
	var err error

	if req.Title != nil {
		item, err = h.service.Rename(subject, todoID, shareID, *req.Title)
		if err != nil {
			fail(c, err, 800003, "更新待办失败")
			return
		}
	}
	if req.Completed != nil {
		item, err = h.service.SetCompleted(subject, todoID, shareID, *req.Completed)
		if err != nil {
			fail(c, err, 800003, "更新待办失败")
			return
		}
	}

	if item == nil {
		response.Success(c, nil)
		return
	}
	response.Success(c, toDTO(item))
}

// Delete 删除待办
// @Summary 删除待办
// @Tags 待办
// @Accept json
// @Produce json
// @Param id path string true "待办ID"
// @Param share_id query string false "分享令牌"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	err := h.service.Remove(middleware.Subject(c), c.Param("id"), c.Query("share_id"))
	if err != nil {
		fail(c, err, 800004, "删除待办失败")
		return
	}
	response.Success(c, nil)
}

// ToggleAll 批量设置完成状态
// @Summary 批量切换完成状态
// @Tags 待办
// @Accept json
// @Produce json
// @Param id path string true "清单ID"
// @Param share_id query string false "分享令牌"
// @Param body body ToggleAllRequest true "目标状态"
// @Success 200 {object} response.Response
// @Router /lists/{id}/todos/toggle-all [post]
func (h *TodoHandler) ToggleAll(c *gin.Context) {
	var req ToggleAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	err := h.service.ToggleAll(
		middleware.Subject(c), c.Param("id"), c.Query("share_id"), req.Completed,
	)
	if err != nil {
		fail(c, err, 800005, "批量更新失败")
		return
	}
	response.Success(c, nil)
}

// ClearCompleted 清除已完成待办
// @Summary 清除已完成待办
// @Tags 待办
// @Accept json
// @Produce json
// @Param id path string true "清单ID"
// @Param share_id query string false "分享令牌"
// @Success 200 {object} response.Response
// @Router /lists/{id}/todos/completed [delete]
func (h *TodoHandler) ClearCompleted(c *gin.Context) {
	count, err := h.service.ClearCompleted(
		middleware.Subject(c), c.Param("id"), c.Query("share_id"),
	)
	if err != nil {
		fail(c, err, 800006, "清除已完成待办失败")
		return
	}
	response.Success(c, gin.H{"deleted": count})
}
