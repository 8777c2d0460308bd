package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Blob 二进制对象
type Blob struct {
	ID          string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// BlobStore 二进制对象存储接口
// 存储生成的背景图等不透明字节块；URL 由 HTTP 层按 ID 提供
type BlobStore interface {
	// Store 保存字节块，返回不透明 ID
	Store(contentType string, data []byte) (string, error)

	// Get 根据 ID 获取字节块，不存在时返回 nil
	Get(id string) (*Blob, error)

	// Delete 删除字节块（不存在时静默成功）
	Delete(id string) error
}

// blobStore BlobStore 的 SQLite 实现
type blobStore struct {
	db *sql.DB
}

// NewBlobStore 创建二进制对象存储实例
func NewBlobStore(db *sql.DB) BlobStore {
	return &blobStore{db: db}
}

// Store 保存字节块
func (s *blobStore) Store(contentType string, data []byte) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO blobs (id, content_type, data, created_at) VALUES (?, ?, ?, ?)`,
		id, contentType, data, time.Now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to store blob: %w", err)
	}
	return id, nil
}

// Get 根据 ID 获取字节块
func (s *blobStore) Get(id string) (*Blob, error) {
	var blob Blob
	var createdAt int64
	err := s.db.QueryRow(
		`SELECT id, content_type, data, created_at FROM blobs WHERE id = ?`, id,
	).Scan(&blob.ID, &blob.ContentType, &blob.Data, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query blob: %w", err)
	}
	blob.CreatedAt = time.UnixMilli(createdAt)
	return &blob, nil
}

// Delete 删除字节块
func (s *blobStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM blobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// 编译时检查接口实现
var _ BlobStore = (*blobStore)(nil)
