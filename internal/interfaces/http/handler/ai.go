package handler

import (
	"net/http"

	appTodo "github.com/listwise/backend/internal/application/todo"
	domainTodo "github.com/listwise/backend/internal/domain/todo"
	"github.com/listwise/backend/internal/interfaces/http/middleware"
	"github.com/listwise/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// AIHandler 自然语言指令处理器
type AIHandler struct {
	orchestrator *appTodo.Orchestrator
}

// NewAIHandler 创建自然语言指令处理器
func NewAIHandler(orchestrator *appTodo.Orchestrator) *AIHandler {
	return &AIHandler{orchestrator: orchestrator}
}

// HistoryTurn 会话历史中的一轮
type HistoryTurn struct {
	Snapshot []domainTodo.SnapshotItem `json:"snapshot"`
	Message  string                    `json:"message" binding:"required"`
}

// InstructRequest 指令请求
type InstructRequest struct {
	Message string        `json:"message" binding:"required"`
	History []HistoryTurn `json:"history"`
}

// InstructResponse 指令响应
type InstructResponse struct {
	Applied  bool                      `json:"applied"`
	List     []domainTodo.SnapshotItem `json:"list,omitempty"`
	Feedback string                    `json:"feedback,omitempty"`
}

// Instruct 用自然语言指令变更清单
// @Summary 自然语言指令
// @Tags 指令
// @Accept json
// @Produce json
// @Param id path string true "清单ID"
// @Param share_id query string false "分享令牌"
// @Param body body InstructRequest true "指令内容"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /lists/{id}/instruct [post]
func (h *AIHandler) Instruct(c *gin.Context) {
	var req InstructRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	history := make([]domainTodo.Turn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, domainTodo.Turn{
			Snapshot: turn.Snapshot,
			Message:  turn.Message,
		})
	}

	interpretation, err := h.orchestrator.ApplyInstruction(
		c.Request.Context(),
		middleware.Subject(c),
		c.Param("id"),
		c.Query("share_id"),
		req.Message,
		history,
	)
	if err != nil {
		fail(c, err, 801001, "处理指令失败")
		return
	}
	if interpretation == nil {
		// 输入过短被静默忽略
		response.Success(c, InstructResponse{Applied: false})
		return
	}

	response.Success(c, InstructResponse{
		Applied:  true,
		List:     interpretation.List,
		Feedback: interpretation.Feedback,
	})
}
