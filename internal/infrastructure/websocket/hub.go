package websocket

import (
	"encoding/json"
	"sync"
)

// Hub WebSocket 连接管理中心
// 连接按清单 ID 分组，清单内容变更后向订阅该清单的客户端推送通知，
// 客户端收到通知后重新拉取清单（替代轮询）
type Hub struct {
	// 按清单 ID 分组的连接
	lists map[string]map[*Connection]bool
	// 注册连接
	register chan *Connection
	// 注销连接
	unregister chan *Connection
	// 广播消息
	broadcast chan *Message
	mu        sync.RWMutex
}

// Connection WebSocket 连接
type Connection struct {
	ListID string
	Send   chan []byte
}

// Message 广播消息
type Message struct {
	ListID string
	Data   []byte
}

// ListEvent 推送给客户端的事件载荷
type ListEvent struct {
	Type   string `json:"type"`
	ListID string `json:"listId"`
	// Feedback 指令处理的简短反馈（仅指令路径携带）
	Feedback string `json:"feedback,omitempty"`
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		lists:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message),
	}
}

// Run 运行 Hub（需要在 goroutine 中运行）
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.lists[conn.ListID] == nil {
				h.lists[conn.ListID] = make(map[*Connection]bool)
			}
			h.lists[conn.ListID][conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if subscribers, ok := h.lists[conn.ListID]; ok {
				if _, ok := subscribers[conn]; ok {
					delete(subscribers, conn)
					close(conn.Send)
					if len(subscribers) == 0 {
						delete(h.lists, conn.ListID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			if subscribers, ok := h.lists[msg.ListID]; ok {
				for conn := range subscribers {
					select {
					case conn.Send <- msg.Data:
					default:
						// 发送缓冲已满的连接视为死连接
						close(conn.Send)
						delete(subscribers, conn)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Start 启动 Hub（启动后台 goroutine）
func (h *Hub) Start() {
	go h.Run()
}

// Register 注册连接
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister 注销连接
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToList 向订阅指定清单的连接广播事件
func (h *Hub) BroadcastToList(listID string, event *ListEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return err
	}
	h.broadcast <- &Message{
		ListID: listID,
		Data:   jsonData,
	}
	return nil
}
