package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/listwise/backend/internal/domain/todo"
)

// todoRepository 待办事项 SQLite 仓储实现
type todoRepository struct {
	db *sql.DB
}

// NewTodoRepository 创建待办事项仓储实例
func NewTodoRepository(db *sql.DB) todo.Repository {
	return &todoRepository{db: db}
}

// scanTodos 扫描查询结果
func scanTodos(rows *sql.Rows) ([]*todo.TodoItem, error) {
	defer rows.Close()

	var items []*todo.TodoItem
	for rows.Next() {
		var item todo.TodoItem
		var completed int
		if err := rows.Scan(&item.ID, &item.ListID, &item.Title, &completed, &item.Position); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		item.Completed = completed == 1
		items = append(items, &item)
	}
	return items, rows.Err()
}

// FindByList 获取清单下全部待办（按 position 升序）
func (r *todoRepository) FindByList(listID string) ([]*todo.TodoItem, error) {
	query := `
		SELECT id, list_id, title, completed, position
		FROM todos
		WHERE list_id = ?
		ORDER BY position ASC`

	rows, err := r.db.Query(query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	return scanTodos(rows)
}

// FindByListCompleted 按完成状态获取清单下的待办
func (r *todoRepository) FindByListCompleted(listID string, completed bool) ([]*todo.TodoItem, error) {
	query := `
		SELECT id, list_id, title, completed, position
		FROM todos
		WHERE list_id = ? AND completed = ?
		ORDER BY position ASC`

	flag := 0
	if completed {
		flag = 1
	}

	rows, err := r.db.Query(query, listID, flag)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos by completed: %w", err)
	}
	return scanTodos(rows)
}

// Get 根据 ID 查找待办
func (r *todoRepository) Get(id string) (*todo.TodoItem, error) {
	query := `
		SELECT id, list_id, title, completed, position
		FROM todos
		WHERE id = ?`

	var item todo.TodoItem
	var completed int
	err := r.db.QueryRow(query, id).Scan(&item.ID, &item.ListID, &item.Title, &completed, &item.Position)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query todo: %w", err)
	}
	item.Completed = completed == 1
	return &item, nil
}

// Insert 在清单末尾追加一条待办
func (r *todoRepository) Insert(listID, title string) (*todo.TodoItem, error) {
	item := &todo.TodoItem{
		ID:     uuid.New().String(),
		ListID: listID,
		Title:  title,
	}

	// position 取当前最大值 + 1，与插入放在同一事务避免并发追加取到相同位置
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(
		`SELECT COALESCE(MAX(position), -1) + 1 FROM todos WHERE list_id = ?`, listID,
	).Scan(&item.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to compute position: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO todos (id, list_id, title, completed, position) VALUES (?, ?, ?, 0, ?)`,
		item.ID, item.ListID, item.Title, item.Position,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit insert: %w", err)
	}
	return item, nil
}

// SetCompleted 设置单条待办的完成状态
func (r *todoRepository) SetCompleted(id string, completed bool) error {
	flag := 0
	if completed {
		flag = 1
	}

	result, err := r.db.Exec(`UPDATE todos SET completed = ? WHERE id = ?`, flag, id)
	if err != nil {
		return fmt.Errorf("failed to update todo completed: %w", err)
	}
	return requireAffected(result, todo.ErrTodoNotFound)
}

// SetTitle 修改单条待办的标题
func (r *todoRepository) SetTitle(id, title string) error {
	result, err := r.db.Exec(`UPDATE todos SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("failed to update todo title: %w", err)
	}
	return requireAffected(result, todo.ErrTodoNotFound)
}

// Delete 删除单条待办
func (r *todoRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// SetAllCompleted 将清单下全部待办置为指定完成状态
func (r *todoRepository) SetAllCompleted(listID string, completed bool) error {
	flag := 0
	if completed {
		flag = 1
	}

	_, err := r.db.Exec(`UPDATE todos SET completed = ? WHERE list_id = ?`, flag, listID)
	if err != nil {
		return fmt.Errorf("failed to update todos completed: %w", err)
	}
	return nil
}

// DeleteCompleted 删除清单下全部已完成待办
func (r *todoRepository) DeleteCompleted(listID string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM todos WHERE list_id = ? AND completed = 1`, listID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed todos: %w", err)
	}
	return result.RowsAffected()
}

// ReplaceAll 用给定条目整体替换清单内容
// 删除加插入在同一事务内提交，并发读取方永远不会观察到半删半插的中间态；
// 同一清单上并发的 ReplaceAll 由 SQLite 写锁串行化，后提交者整体获胜
func (r *todoRepository) ReplaceAll(listID string, items []todo.SnapshotItem) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM todos WHERE list_id = ?`, listID); err != nil {
		return fmt.Errorf("failed to clear todos: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO todos (id, list_id, title, completed, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		completed := 0
		if item.Completed {
			completed = 1
		}
		if _, err := stmt.Exec(uuid.New().String(), listID, item.Title, completed, i); err != nil {
			return fmt.Errorf("failed to insert todo at position %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

// requireAffected 更新未命中任何行时返回给定错误
func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

// 编译时检查接口实现
var _ todo.Repository = (*todoRepository)(nil)
