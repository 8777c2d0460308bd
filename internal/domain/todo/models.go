package todo

// TodoItem 待办事项实体
type TodoItem struct {
	ID        string // 唯一标识
	ListID    string // 所属清单
	Title     string // 待办内容
	Completed bool   // 是否完成
	Position  int    // 清单内顺序
}

// List 待办清单实体
// 每个清单有唯一所有者，并持有一个分享令牌；
// 持有正确分享令牌的访客可读写该清单
type List struct {
	ID                string  // 唯一标识
	UserID            string  // 所有者用户 ID
	ShareID           string  // 分享令牌（不透明字符串）
	BackgroundImageID *string // 背景图 Blob ID（可选）
}

// SnapshotItem 清单快照条目
// 发送给解释器、以及从解释器返回的条目只包含这两个字段，
// 任何额外字段都会被拒绝
type SnapshotItem struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Snapshot 将持久化的待办转换为快照条目（保持顺序）
func Snapshot(items []*TodoItem) []SnapshotItem {
	snapshot := make([]SnapshotItem, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, SnapshotItem{
			Title:     item.Title,
			Completed: item.Completed,
		})
	}
	return snapshot
}

// Interpretation 解释器的结构化响应
// list 整体替换当前清单内容，feedback 为不超过 50 字符的简短反馈
type Interpretation struct {
	List     []SnapshotItem `json:"list"`
	Feedback string         `json:"feedback"`
}

// Turn 一轮指令：指令发出前的清单快照 + 用户原始指令
// 多轮对话时只有最后一轮是当前要处理的指令，之前的轮次作为会话上下文
type Turn struct {
	Snapshot []SnapshotItem
	Message  string
}
