package kv

import (
	"context"
	"fmt"
	"sync"

	"github.com/xiebiao/library/internal/domain/notification"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// notificationSnapshot 通知账本的持久化快照信封
type notificationSnapshot struct {
	Version int                          `json:"version"`
	Records []*notification.Notification `json:"records"`
}

// NotificationRepository 通知仓储实现
// 账本语义:records只追加,唯一的原地修改是已读标记
type NotificationRepository struct {
	mu    sync.Mutex
	store Store
	key   string

	records []*notification.Notification
}

// NewNotificationRepository 创建通知仓储并从快照恢复状态
func NewNotificationRepository(ctx context.Context, store Store, key string) (*NotificationRepository, error) {
	r := &NotificationRepository{store: store, key: key}

	blob, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("读取通知账本快照失败: %w", err)
	}
	if ok {
		var snap notificationSnapshot
		if err := json.Unmarshal(blob, &snap); err != nil {
			return nil, fmt.Errorf("解析通知账本快照失败: %w", err)
		}
		if snap.Version != snapshotVersion {
			return nil, fmt.Errorf("不支持的通知账本快照版本: %d", snap.Version)
		}
		r.records = snap.Records
	}

	return r, nil
}

// Append 追加一条通知
func (r *NotificationRepository) Append(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *n
	r.records = append(r.records, &cp)
	if metrics.NotificationsAppendedTotal != nil {
		metrics.NotificationsAppendedTotal.Inc()
	}

	return r.snapshot(ctx)
}

// ListByUser 按追加顺序返回指定用户的通知副本
func (r *NotificationRepository) ListByUser(_ context.Context, userID string) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*notification.Notification, 0)
	for _, n := range r.records {
		if n.UserID == userID {
			cp := *n
			result = append(result, &cp)
		}
	}
	return result, nil
}

// MarkAllRead 标记指定用户的全部未读通知为已读,返回标记数量
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.records {
		if n.UserID == userID && !n.Read {
			n.MarkRead()
			count++
		}
	}
	if count == 0 {
		// 没有变更就不写快照(幂等重复调用是无操作)
		return 0, nil
	}

	return count, r.snapshot(ctx)
}

// snapshot 把整个账本序列化后写回存储
// 调用方必须已持有r.mu
func (r *NotificationRepository) snapshot(ctx context.Context) error {
	snap := notificationSnapshot{Version: snapshotVersion, Records: r.records}

	blob, err := json.Marshal(snap)
	if err != nil {
		return apperrors.WrapCode(apperrors.ErrCodePersistenceWrite, err, "序列化通知账本快照失败")
	}
	if err := r.store.Set(ctx, r.key, blob); err != nil {
		metrics.IncCounterVec(metrics.PersistenceWriteFailuresTotal, map[string]string{"collection": "notifications"})
		return apperrors.WrapCode(apperrors.ErrCodePersistenceWrite, err, "写入通知账本快照失败")
	}
	return nil
}
