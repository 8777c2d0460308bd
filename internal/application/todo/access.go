package todo

import (
	"log/slog"

	domainTodo "github.com/listwise/backend/internal/domain/todo"
	domainUser "github.com/listwise/backend/internal/domain/user"
	"github.com/listwise/backend/internal/infrastructure/log"
)

// AccessResolver 访问范围解析器
// 判定一次请求对目标清单的访问权限：所有者无条件放行；
// 否则要求分享令牌与清单存储的令牌精确匹配（能力令牌模型，不是角色模型）。
// 所有仓储读写都必须先经过这里
type AccessResolver struct {
	lists  domainTodo.ListRepository
	todos  domainTodo.Repository
	users  domainUser.Repository
	logger *slog.Logger
}

// NewAccessResolver 创建访问范围解析器
func NewAccessResolver(
	lists domainTodo.ListRepository,
	todos domainTodo.Repository,
	users domainUser.Repository,
) *AccessResolver {
	return &AccessResolver{
		lists:  lists,
		todos:  todos,
		users:  users,
		logger: log.NewModuleLogger("todo", "access"),
	}
}

// ResolveList 解析调用者对清单的访问权限
// subject 为空表示未认证调用者，只能凭分享令牌访问
func (r *AccessResolver) ResolveList(subject, listID, shareID string) (*domainTodo.List, error) {
	list, err := r.lists.Get(listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, domainTodo.ErrListNotFound
	}

	if subject != "" {
		u, err := r.users.FindBySubject(subject)
		if err != nil {
			return nil, err
		}
		if u != nil && u.ID == list.UserID {
			return list, nil
		}
	}

	if shareID != "" && shareID == list.ShareID {
		return list, nil
	}

	r.logger.Debug("Access denied", "list_id", listID)
	return nil, domainTodo.ErrUnauthorized
}

// ResolveTodo 解析调用者对单条待办的访问权限
// 先定位待办，再按其所属清单做同样的判定
func (r *AccessResolver) ResolveTodo(subject, todoID, shareID string) (*domainTodo.TodoItem, error) {
	item, err := r.todos.Get(todoID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domainTodo.ErrTodoNotFound
	}

	if _, err := r.ResolveList(subject, item.ListID, shareID); err != nil {
		return nil, err
	}
	return item, nil
}
