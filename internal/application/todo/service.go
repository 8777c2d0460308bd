package todo

import (
	"log/slog"

	domainTodo "github.com/listwise/backend/internal/domain/todo"
	"github.com/listwise/backend/internal/infrastructure/log"
	"github.com/listwise/backend/internal/infrastructure/websocket"
)

// Service 待办 CRUD 服务
// 指令路径之外的直接变更：逐条增删改查，与指令路径共用权限判定和存储
type Service struct {
	todos  domainTodo.Repository
	access *AccessResolver
	hub    *websocket.Hub
	logger *slog.Logger
}

// NewService 创建待办 CRUD 服务
func NewService(todos domainTodo.Repository, access *AccessResolver, hub *websocket.Hub) *Service {
	return &Service{
		todos:  todos,
		access: access,
		hub:    hub,
		logger: log.NewModuleLogger("todo", "service"),
	}
}

// ListTodos 获取清单下的待办，completed 非空时按完成状态过滤
func (s *Service) ListTodos(subject, listID, shareID string, completed *bool) ([]*domainTodo.TodoItem, error) {
	list, err := s.access.ResolveList(subject, listID, shareID)
	if err != nil {
		return nil, err
	}

	if completed == nil {
		return s.todos.FindByList(list.ID)
	}
	return s.todos.FindByListCompleted(list.ID, *completed)
}

// Add 追加一条待办
// 标题经过与指令相同的清洗；过短的标题静默忽略并返回 nil
func (s *Service) Add(subject, listID, shareID, rawTitle string) (*domainTodo.TodoItem, error) {
	title, ok := ParseInput(rawTitle)
	if !ok {
		return nil, nil
	}

	list, err := s.access.ResolveList(subject, listID, shareID)
	if err != nil {
		return nil, err
	}

	item, err := s.todos.Insert(list.ID, title)
	if err != nil {
		return nil, err
	}
	s.notify(list.ID)
	return item, nil
}

// Toggle 切换单条待办的完成状态
func (s *Service) Toggle(subject, todoID, shareID string) (*domainTodo.TodoItem, error) {
	item, err := s.access.ResolveTodo(subject, todoID, shareID)
	if err != nil {
		return nil, err
	}
	return s.setCompleted(item, !item.Completed)
}

// SetCompleted 将单条待办设置为指定完成状态
func (s *Service) SetCompleted(subject, todoID, shareID string, completed bool) (*domainTodo.TodoItem, error) {
	item, err := s.access.ResolveTodo(subject, todoID, shareID)
	if err != nil {
		return nil, err
	}
	if item.Completed == completed {
		return item, nil
	}
	return s.setCompleted(item, completed)
}

// setCompleted 落库并广播
func (s *Service) setCompleted(item *domainTodo.TodoItem, completed bool) (*domainTodo.TodoItem, error) {
	if err := s.todos.SetCompleted(item.ID, completed); err != nil {
		return nil, err
	}
	item.Completed = completed
	s.notify(item.ListID)
	return item, nil
}

// Rename 修改单条待办的标题
func (s *Service) Rename(subject, todoID, shareID, rawTitle string) (*domainTodo.TodoItem, error) {
	title, ok := ParseInput(rawTitle)
	if !ok {
		return nil, nil
	}

	item, err := s.access.ResolveTodo(subject, todoID, shareID)
	if err != nil {
		return nil, err
	}

	if err := s.todos.SetTitle(item.ID, title); err != nil {
		return nil, err
	}
	item.Title = title
	s.notify(item.ListID)
	return item, nil
}

// Remove 删除单条待办
func (s *Service) Remove(subject, todoID, shareID string) error {
	item, err := s.access.ResolveTodo(subject, todoID, shareID)
	if err != nil {
		return err
	}

	if err := s.todos.Delete(item.ID); err != nil {
		return err
	}
	s.notify(item.ListID)
	return nil
}

// ToggleAll 将清单下全部待办置为指定完成状态
func (s *Service) ToggleAll(subject, listID, shareID string, completed bool) error {
	list, err := s.access.ResolveList(subject, listID, shareID)
	if err != nil {
		return err
	}

	if err := s.todos.SetAllCompleted(list.ID, completed); err != nil {
		return err
	}
	s.notify(list.ID)
	return nil
}

// ClearCompleted 删除清单下全部已完成待办
func (s *Service) ClearCompleted(subject, listID, shareID string) (int64, error) {
	list, err := s.access.ResolveList(subject, listID, shareID)
	if err != nil {
		return 0, err
	}

	count, err := s.todos.DeleteCompleted(list.ID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.notify(list.ID)
	}
	return count, nil
}

// notify 推送清单变更事件
func (s *Service) notify(listID string) {
	if s.hub == nil {
		return
	}
	if err := s.hub.BroadcastToList(listID, &websocket.ListEvent{
		Type:   "list.updated",
		ListID: listID,
	}); err != nil {
		s.logger.Warn("Failed to broadcast list update", "error", err)
	}
}
