package handler

import (
	"net/http"
	"time"

	"log/slog"

	appTodo "github.com/listwise/backend/internal/application/todo"
	"github.com/listwise/backend/internal/infrastructure/log"
	infraWS "github.com/listwise/backend/internal/infrastructure/websocket"
	"github.com/listwise/backend/internal/interfaces/http/middleware"
	"github.com/listwise/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// 写超时
const wsWriteTimeout = 10 * time.Second

// WSHandler 清单变更订阅处理器
// 客户端按清单订阅变更事件，收到事件后重新拉取清单
type WSHandler struct {
	hub      *infraWS.Hub
	access   *appTodo.AccessResolver
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler 创建订阅处理器
func NewWSHandler(hub *infraWS.Hub, access *appTodo.AccessResolver) *WSHandler {
	return &WSHandler{
		hub:    hub,
		access: access,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 前端与后端不同源部署
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log.NewModuleLogger("http", "ws"),
	}
}

// Subscribe 订阅清单变更
// 订阅前按与读写相同的规则做权限判定
// @Summary 订阅清单变更
// @Tags 清单
// @Param id path string true "清单ID"
// @Param share_id query string false "分享令牌"
// @Success 101 {string} string "Switching Protocols"
// @Failure 403 {object} response.ErrorResponse
// @Router /ws/lists/{id} [get]
func (h *WSHandler) Subscribe(c *gin.Context) {
	listID := c.Param("id")

	if _, err := h.access.ResolveList(
		middleware.Subject(c), listID, c.Query("share_id"),
	); err != nil {
		fail(c, err, 805001, "订阅失败")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		response.Error(c, http.StatusBadRequest, 805002, "协议升级失败")
		return
	}

	subscriber := &infraWS.Connection{
		ListID: listID,
		Send:   make(chan []byte, 16),
	}
	h.hub.Register(subscriber)

	go h.writeLoop(conn, subscriber)
	go h.readLoop(conn, subscriber)
}

// writeLoop 把 hub 的事件写入连接
func (h *WSHandler) writeLoop(conn *websocket.Conn, subscriber *infraWS.Connection) {
	defer conn.Close()

	for data := range subscriber.Send {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.hub.Unregister(subscriber)
			return
		}
	}
}

// readLoop 消费客户端消息直到断开，用于感知连接关闭
func (h *WSHandler) readLoop(conn *websocket.Conn, subscriber *infraWS.Connection) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unregister(subscriber)
			return
		}
	}
}
