package user

// User 用户实体
// Subject 是身份提供方校验后的调用者标识，本服务不保存凭证
type User struct {
	ID      string // 唯一标识
	Subject string // 身份提供方 subject
}

// Repository 用户仓储接口
type Repository interface {
	// FindBySubject 根据身份 subject 查找用户，不存在时返回 nil
	FindBySubject(subject string) (*User, error)

	// Sync 确保 subject 对应的用户存在（幂等）
	Sync(subject string) (*User, error)
}
