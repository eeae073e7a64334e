package notification

import "time"

// Notification 站内通知实体
// 设计说明:
// 1. 通知是只追加的账本记录,唯一可变字段是已读标记
// 2. UserID是弱引用,不校验用户是否存在于身份目录
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification 创建未读通知
func NewNotification(id, userID, message string, now time.Time) *Notification {
	return &Notification{
		ID:        id,
		UserID:    userID,
		Message:   message,
		Read:      false,
		CreatedAt: now,
	}
}

// MarkRead 标记为已读(幂等)
func (n *Notification) MarkRead() {
	n.Read = true
}
