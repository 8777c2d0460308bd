package todo

// Repository 待办事项仓储接口
type Repository interface {
	// FindByList 获取清单下全部待办（按 position 升序）
	FindByList(listID string) ([]*TodoItem, error)

	// FindByListCompleted 按完成状态获取清单下的待办
	FindByListCompleted(listID string, completed bool) ([]*TodoItem, error)

	// Get 根据 ID 查找待办
	Get(id string) (*TodoItem, error)

	// Insert 在清单末尾追加一条待办
	Insert(listID, title string) (*TodoItem, error)

	// SetCompleted 设置单条待办的完成状态
	SetCompleted(id string, completed bool) error

	// SetTitle 修改单条待办的标题
	SetTitle(id, title string) error

	// Delete 删除单条待办
	Delete(id string) error

	// SetAllCompleted 将清单下全部待办置为指定完成状态
	SetAllCompleted(listID string, completed bool) error

	// DeleteCompleted 删除清单下全部已完成待办，返回删除数量
	DeleteCompleted(listID string) (int64, error)

	// ReplaceAll 用给定条目整体替换清单内容
	// 删除加插入在同一事务内完成，并发读取方要么看到旧集合要么看到新集合
	ReplaceAll(listID string, items []SnapshotItem) error
}

// ListRepository 清单仓储接口
type ListRepository interface {
	// Get 根据 ID 查找清单
	Get(id string) (*List, error)

	// FindByShareID 根据分享令牌查找清单
	FindByShareID(shareID string) (*List, error)

	// FindByUser 查找用户拥有的全部清单
	FindByUser(userID string) ([]*List, error)

	// Create 为用户创建清单（自动生成分享令牌）
	Create(userID string) (*List, error)

	// SetBackgroundImage 更新清单的背景图引用
	SetBackgroundImage(listID string, blobID *string) error
}
