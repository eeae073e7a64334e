package notification

import "context"

// Repository 通知仓储接口
// 账本语义:Append保持追加顺序,Update只改已读标记
type Repository interface {
	// Append 追加一条通知(保持追加顺序)
	Append(ctx context.Context, n *Notification) error

	// ListByUser 按追加顺序返回指定用户的全部通知副本
	ListByUser(ctx context.Context, userID string) ([]*Notification, error)

	// MarkAllRead 将指定用户的全部未读通知标记为已读
	// 返回实际被标记的数量;没有未读通知时为0(幂等操作)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}
