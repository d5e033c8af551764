package constants

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// 验证令牌用途
const (
	TokenPurposeConfirm = "confirm"
	TokenPurposeReset   = "reset"
)

// 队列名称
const (
	QueueDefault = "default"
)

// 异步任务类型
const (
	TaskAuthEmail = "email:auth"
)

// 上下文键
const (
	ContextKeyUserID = "user_id"
)
