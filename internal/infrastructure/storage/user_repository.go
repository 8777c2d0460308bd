package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/listwise/backend/internal/domain/user"
)

// userRepository 用户 SQLite 仓储实现
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository(db *sql.DB) user.Repository {
	return &userRepository{db: db}
}

// FindBySubject 根据身份 subject 查找用户
func (r *userRepository) FindBySubject(subject string) (*user.User, error) {
	var u user.User
	err := r.db.QueryRow(`SELECT id, subject FROM users WHERE subject = ?`, subject).
		Scan(&u.ID, &u.Subject)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// Sync 确保 subject 对应的用户存在
// INSERT OR IGNORE 保证并发同步同一 subject 时幂等
func (r *userRepository) Sync(subject string) (*user.User, error) {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO users (id, subject) VALUES (?, ?)`,
		uuid.New().String(), subject,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sync user: %w", err)
	}
	return r.FindBySubject(subject)
}

// 编译时检查接口实现
var _ user.Repository = (*userRepository)(nil)
