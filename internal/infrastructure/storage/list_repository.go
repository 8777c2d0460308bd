package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/listwise/backend/internal/domain/todo"
)

// listRepository 清单 SQLite 仓储实现
type listRepository struct {
	db *sql.DB
}

// NewListRepository 创建清单仓储实例
func NewListRepository(db *sql.DB) todo.ListRepository {
	return &listRepository{db: db}
}

// scanList 扫描单行清单
func scanList(row *sql.Row) (*todo.List, error) {
	var list todo.List
	var backgroundImageID sql.NullString
	err := row.Scan(&list.ID, &list.UserID, &list.ShareID, &backgroundImageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query list: %w", err)
	}
	if backgroundImageID.Valid {
		list.BackgroundImageID = &backgroundImageID.String
	}
	return &list, nil
}

// Get 根据 ID 查找清单
func (r *listRepository) Get(id string) (*todo.List, error) {
	row := r.db.QueryRow(
		`SELECT id, user_id, share_id, background_image_id FROM lists WHERE id = ?`, id,
	)
	return scanList(row)
}

// FindByShareID 根据分享令牌查找清单
func (r *listRepository) FindByShareID(shareID string) (*todo.List, error) {
	row := r.db.QueryRow(
		`SELECT id, user_id, share_id, background_image_id FROM lists WHERE share_id = ?`, shareID,
	)
	return scanList(row)
}

// FindByUser 查找用户拥有的全部清单
func (r *listRepository) FindByUser(userID string) ([]*todo.List, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, share_id, background_image_id FROM lists WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	var lists []*todo.List
	for rows.Next() {
		var list todo.List
		var backgroundImageID sql.NullString
		if err := rows.Scan(&list.ID, &list.UserID, &list.ShareID, &backgroundImageID); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		if backgroundImageID.Valid {
			list.BackgroundImageID = &backgroundImageID.String
		}
		lists = append(lists, &list)
	}
	return lists, rows.Err()
}

// Create 为用户创建清单
// 分享令牌独立生成，与清单 ID 无关，令牌即能力
func (r *listRepository) Create(userID string) (*todo.List, error) {
	list := &todo.List{
		ID:      uuid.New().String(),
		UserID:  userID,
		ShareID: uuid.New().String(),
	}

	_, err := r.db.Exec(
		`INSERT INTO lists (id, user_id, share_id, background_image_id) VALUES (?, ?, ?, NULL)`,
		list.ID, list.UserID, list.ShareID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert list: %w", err)
	}
	return list, nil
}

// SetBackgroundImage 更新清单的背景图引用
func (r *listRepository) SetBackgroundImage(listID string, blobID *string) error {
	var value sql.NullString
	if blobID != nil {
		value = sql.NullString{String: *blobID, Valid: true}
	}

	result, err := r.db.Exec(`UPDATE lists SET background_image_id = ? WHERE id = ?`, value, listID)
	if err != nil {
		return fmt.Errorf("failed to update list background image: %w", err)
	}
	return requireAffected(result, todo.ErrListNotFound)
}

// 编译时检查接口实现
var _ todo.ListRepository = (*listRepository)(nil)
