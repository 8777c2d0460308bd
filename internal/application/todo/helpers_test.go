package todo

import (
	"path/filepath"
	"testing"

	domainTodo "github.com/listwise/backend/internal/domain/todo"
	domainUser "github.com/listwise/backend/internal/domain/user"
	"github.com/listwise/backend/internal/infrastructure/config"
	"github.com/listwise/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/require"
)

// testRepos 应用层测试共用的真实 SQLite 仓储
type testRepos struct {
	todos domainTodo.Repository
	lists domainTodo.ListRepository
	users domainUser.Repository
	blobs storage.BlobStore
}

// setupRepos 打开临时数据库并构造全套仓储
func setupRepos(t *testing.T) *testRepos {
	t.Helper()

	db, err := storage.OpenDB(&config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &testRepos{
		todos: storage.NewTodoRepository(db),
		lists: storage.NewListRepository(db),
		users: storage.NewUserRepository(db),
		blobs: storage.NewBlobStore(db),
	}
}

// createOwnedList 创建用户及其清单
func createOwnedList(t *testing.T, repos *testRepos, subject string) (*domainUser.User, *domainTodo.List) {
	t.Helper()

	u, err := repos.users.Sync(subject)
	require.NoError(t, err)
	list, err := repos.lists.Create(u.ID)
	require.NoError(t, err)
	return u, list
}
