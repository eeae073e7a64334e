package notification

import (
	"context"

	"github.com/xiebiao/library/internal/domain/notification"
)

// ListNotificationsUseCase 通知查询用例
type ListNotificationsUseCase struct {
	notificationService notification.Service
}

// NewListNotificationsUseCase 创建通知查询用例
func NewListNotificationsUseCase(notificationService notification.Service) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{notificationService: notificationService}
}

// NotificationView 通知视图DTO
type NotificationView struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// Execute 查询当前用户的通知
// unreadOnly为true时只返回未读通知
func (uc *ListNotificationsUseCase) Execute(ctx context.Context, userID string, unreadOnly bool) ([]NotificationView, error) {
	var (
		items []*notification.Notification
		err   error
	)
	if unreadOnly {
		items, err = uc.notificationService.UnreadFor(ctx, userID)
	} else {
		items, err = uc.notificationService.ListFor(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	views := make([]NotificationView, 0, len(items))
	for _, n := range items {
		views = append(views, NotificationView{
			ID:        n.ID,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return views, nil
}

// MarkAllReadUseCase 全部标记已读用例
// 幂等操作:没有未读通知时标记数量为0,不是错误
type MarkAllReadUseCase struct {
	notificationService notification.Service
}

// NewMarkAllReadUseCase 创建标记已读用例
func NewMarkAllReadUseCase(notificationService notification.Service) *MarkAllReadUseCase {
	return &MarkAllReadUseCase{notificationService: notificationService}
}

// MarkAllReadResponse 标记结果DTO
type MarkAllReadResponse struct {
	Marked int `json:"marked"` // 实际被标记为已读的数量
}

// Execute 执行标记
func (uc *MarkAllReadUseCase) Execute(ctx context.Context, userID string) (*MarkAllReadResponse, error) {
	count, err := uc.notificationService.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MarkAllReadResponse{Marked: count}, nil
}
