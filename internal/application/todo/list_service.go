package todo

import (
	"log/slog"

	domainTodo "github.com/listwise/backend/internal/domain/todo"
	domainUser "github.com/listwise/backend/internal/domain/user"
	"github.com/listwise/backend/internal/infrastructure/log"
)

// ListService 清单与用户服务
// 身份同步和清单生命周期；清单内容的读写在 Service 和 Orchestrator
type ListService struct {
	lists  domainTodo.ListRepository
	users  domainUser.Repository
	logger *slog.Logger
}

// NewListService 创建清单服务
func NewListService(lists domainTodo.ListRepository, users domainUser.Repository) *ListService {
	return &ListService{
		lists:  lists,
		users:  users,
		logger: log.NewModuleLogger("todo", "list_service"),
	}
}

// SyncUser 确保身份 subject 对应的用户存在
// 身份提供方完成认证后前端调用一次；幂等
func (s *ListService) SyncUser(subject string) (*domainUser.User, error) {
	return s.users.Sync(subject)
}

// CreateList 为用户创建清单（用户不存在时先同步）
func (s *ListService) CreateList(subject string) (*domainTodo.List, error) {
	u, err := s.users.Sync(subject)
	if err != nil {
		return nil, err
	}

	list, err := s.lists.Create(u.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("List created", "list_id", list.ID)
	return list, nil
}

// MyLists 获取用户拥有的全部清单
func (s *ListService) MyLists(subject string) ([]*domainTodo.List, error) {
	u, err := s.users.FindBySubject(subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	return s.lists.FindByUser(u.ID)
}

// GetByShareID 凭分享令牌获取清单
// 令牌本身即授权，无需认证
func (s *ListService) GetByShareID(shareID string) (*domainTodo.List, error) {
	list, err := s.lists.FindByShareID(shareID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, domainTodo.ErrListNotFound
	}
	return list, nil
}
