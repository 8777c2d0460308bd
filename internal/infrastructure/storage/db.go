package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/listwise/backend/internal/infrastructure/config"
	_ "modernc.org/sqlite"
)

// DefaultDBPath 默认数据库路径
// Windows: %USERPROFILE%\.listwise\listwise.db
// macOS/Linux: ~/.listwise/listwise.db
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".listwise", "listwise.db"), nil
}

// OpenDB 打开数据库连接并初始化表结构
func OpenDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	// 确保目录存在
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL 模式允许读写并发；写事务仍然串行，busy_timeout 让并发写排队而不是报错
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// initSchema 初始化表结构和索引
func initSchema(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS lists (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		share_id TEXT NOT NULL UNIQUE,
		background_image_id TEXT
	);

	CREATE TABLE IF NOT EXISTS todos (
		id TEXT PRIMARY KEY,
		list_id TEXT NOT NULL,
		title TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS blobs (
		id TEXT PRIMARY KEY,
		content_type TEXT NOT NULL,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_users_subject ON users(subject);
	CREATE INDEX IF NOT EXISTS idx_lists_user_id ON lists(user_id);
	CREATE INDEX IF NOT EXISTS idx_lists_share_id ON lists(share_id);
	CREATE INDEX IF NOT EXISTS idx_todos_list_id ON todos(list_id);
	CREATE INDEX IF NOT EXISTS idx_todos_list_id_completed ON todos(list_id, completed);`

	if _, err := db.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
