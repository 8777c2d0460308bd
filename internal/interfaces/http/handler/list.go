package handler

import (
	appTodo "github.com/listwise/backend/internal/application/todo"
	domainTodo "github.com/listwise/backend/internal/domain/todo"
	"github.com/listwise/backend/internal/interfaces/http/middleware"
	"github.com/listwise/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// ListHandler 清单处理器
type ListHandler struct {
	service *appTodo.ListService
}

// NewListHandler 创建清单处理器
func NewListHandler(service *appTodo.ListService) *ListHandler {
	return &ListHandler{service: service}
}

// ListDTO 清单 DTO
// 分享令牌只返回给所有者；凭令牌访问的访客已经持有它
type ListDTO struct {
	ID                string  `json:"id"`
	ShareID           string  `json:"shareId,omitempty"`
	BackgroundImageID *string `json:"backgroundImageId,omitempty"`
}

// toListDTO 将领域模型转换为 DTO
func toListDTO(list *domainTodo.List, includeShareID bool) *ListDTO {
	dto := &ListDTO{
		ID:                list.ID,
		BackgroundImageID: list.BackgroundImageID,
	}
	if includeShareID {
		dto.ShareID = list.ShareID
	}
	return dto
}

// Create 创建清单
// @Summary 创建清单
// @Tags 清单
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /lists [post]
func (h *ListHandler) Create(c *gin.Context) {
	list, err := h.service.CreateList(middleware.Subject(c))
	if err != nil {
		fail(c, err, 802001, "创建清单失败")
		return
	}
	response.Success(c, toListDTO(list, true))
}

// Mine 获取当前用户的清单
// @Summary 获取我的清单
// @Tags 清单
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /lists [get]
func (h *ListHandler) Mine(c *gin.Context) {
	lists, err := h.service.MyLists(middleware.Subject(c))
	if err != nil {
		fail(c, err, 802002, "获取清单失败")
		return
	}

	dtos := make([]*ListDTO, 0, len(lists))
	for _, list := range lists {
		dtos = append(dtos, toListDTO(list, true))
	}
	response.Success(c, dtos)
}

// GetByShare 凭分享令牌获取清单
// @Summary 凭分享令牌获取清单
// @Tags 清单
// @Accept json
// @Produce json
// @Param shareId path string true "分享令牌"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /share/{shareId} [get]
func (h *ListHandler) GetByShare(c *gin.Context) {
	list, err := h.service.GetByShareID(c.Param("shareId"))
	if err != nil {
		fail(c, err, 802003, "获取清单失败")
		return
	}
	response.Success(c, toListDTO(list, false))
}
