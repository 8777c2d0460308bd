package handler

import (
	"net/http"

	"github.com/listwise/backend/internal/infrastructure/storage"
	"github.com/listwise/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// ImageHandler 图片处理器
// 按 blob ID 提供生成的背景图，blob ID 本身不可猜测
type ImageHandler struct {
	blobs storage.BlobStore
}

// NewImageHandler 创建图片处理器
func NewImageHandler(blobs storage.BlobStore) *ImageHandler {
	return &ImageHandler{blobs: blobs}
}

// Get 获取图片内容
// @Summary 获取图片
// @Tags 图片
// @Produce octet-stream
// @Param id path string true "图片ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.ErrorResponse
// @Router /images/{id} [get]
func (h *ImageHandler) Get(c *gin.Context) {
	blob, err := h.blobs.Get(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, 804001, "获取图片失败")
		return
	}
	if blob == nil {
		response.Error(c, http.StatusNotFound, 804002, "图片不存在")
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}
