package todo

import (
	"testing"

	domainTodo "github.com/listwise/backend/internal/domain/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(repos *testRepos) *Service {
	resolver := NewAccessResolver(repos.lists, repos.todos, repos.users)
	return NewService(repos.todos, resolver, nil)
}

func TestService_AddAndList(t *testing.T) {
	repos := setupRepos(t)
	svc := newTestService(repos)
	_, list := createOwnedList(t, repos, "auth0|owner")

	item, err := svc.Add("auth0|owner", list.ID, "", "buy milk")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "buy milk", item.Title)
	assert.False(t, item.Completed)

	// 标题经过与指令相同的清洗
	item, err = svc.Add("auth0|owner", list.ID, "", "<b>eggs</b>")
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;eggs&lt;&#x2F;b&gt;", item.Title)

	items, err := svc.ListTodos("auth0|owner", list.ID, "", nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestService_AddTooShortIgnored(t *testing.T) {
	repos := setupRepos(t)
	svc := newTestService(repos)
	_, list := createOwnedList(t, repos, "auth0|owner")

	item, err := svc.Add("auth0|owner", list.ID, "", " x ")
	require.NoError(t, err)
	assert.Nil(t, item)

	items, err := svc.ListTodos("auth0|owner", list.ID, "", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_ListTodosFiltered(t *testing.T) {
	repos := setupRepos(t)
	svc := newTestService(repos)
	_, list := createOwnedList(t, repos, "auth0|owner")

	done, err := svc.Add("auth0|owner", list.ID, "", "done task")
	require.NoError(t, err)
	_, err = svc.Add("auth0|owner", list.ID, "", "open task")
	require.NoError(t, err)

	_, err = svc.Toggle("auth0|owner", done.ID, "")
	require.NoError(t, err)

	completed := true
	items, err := svc.ListTodos("auth0|owner", list.ID, "", &completed)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "done task", items[0].Title)

	completed = false
	items, err = svc.ListTodos("auth0|owner", list.ID, "", &completed)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "open task", items[0].Title)
}

func TestService_ToggleAndSetCompleted(t *testing.T) {
	repos := setupRepos(t)
	svc := newTestService(repos)
	_, list := createOwnedList(t, repos, "auth0|owner")

	item, err := svc.Add("auth0|owner", list.ID, "", "task")
	require.NoError(t, err)

	toggled, err := svc.Toggle("auth0|owner", item.ID, "")
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = svc.Toggle("auth0|owner", item.ID, "")
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	set, err := svc.SetCompleted("auth0|owner", item.ID, "", true)
	require.NoError(t, err)
	assert.True(t, set.Completed)

	// 幂等：目标状态已满足时不报错
	set, err = svc.SetCompleted("auth0|owner", item.ID, "", true)
	require.NoError(t, err)
	assert.True(t, set.Completed)
}

func TestService_RenameAndRemove(t *testing.T) {
	repos := setupRepos(t)
	svc := newTestService(repos)
	_, list := createOwnedList(t, repos, "auth0|owner")

	item, err := svc.Add("auth0|owner", list.ID, "", "old title")
	require.NoError(t, err)

	renamed, err := svc.Rename("auth0|owner", item.ID, "", "new title")
	require.NoError(t, err)
	assert.Equal(t, "new title", renamed.Title)

	// 过短的新标题静默忽略
	renamed, err = svc.Rename("auth0|owner", item.ID, "", "x")
	require.NoError(t, err)
	assert.Nil(t, renamed)

	stored, err := repos.todos.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", stored.Title)

	require.NoError(t, svc.Remove("auth0|owner", item.ID, ""))
	stored, err = repos.todos.Get(item.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestService_ToggleAllAndClearCompleted(t *testing.T) {
	repos := setupRepos(t)
	svc := newTestService(repos)
	_, list := createOwnedList(t, repos, "auth0|owner")

	for _, title := range []string{"task 1", "task 2", "task 3"} {
		_, err := svc.Add("auth0|owner", list.ID, "", title)
		require.NoError(t, err)
	}

	require.NoError(t, svc.ToggleAll("auth0|owner", list.ID, "", true))
	completed := true
	items, err := svc.ListTodos("auth0|owner", list.ID, "", &completed)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	count, err := svc.ClearCompleted("auth0|owner", list.ID, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	items, err = svc.ListTodos("auth0|owner", list.ID, "", nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	// 没有已完成待办时返回 0
	count, err = svc.ClearCompleted("auth0|owner", list.ID, "")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_AccessEnforced(t *testing.T) {
	repos := setupRepos(t)
	svc := newTestService(repos)
	_, list := createOwnedList(t, repos, "auth0|owner")

	item, err := svc.Add("auth0|owner", list.ID, "", "private task")
	require.NoError(t, err)

	// 无权限的路径全部拒绝
	_, err = svc.ListTodos("auth0|stranger", list.ID, "", nil)
	assert.ErrorIs(t, err, domainTodo.ErrUnauthorized)
	_, err = svc.Add("", list.ID, "", "injected")
	assert.ErrorIs(t, err, domainTodo.ErrUnauthorized)
	_, err = svc.Toggle("", item.ID, "wrong-token")
	assert.ErrorIs(t, err, domainTodo.ErrUnauthorized)
	assert.ErrorIs(t, svc.Remove("", item.ID, ""), domainTodo.ErrUnauthorized)

	// 分享令牌放行写操作
	_, err = svc.Add("", list.ID, list.ShareID, "shared add")
	require.NoError(t, err)
}
