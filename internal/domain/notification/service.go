package notification

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Service 通知领域服务接口
// 学习要点:通知账本的写路径与图书引擎解耦,图书引擎只依赖
// book.Notifier这个小接口,由本服务实现
type Service interface {
	// Notify 向指定用户追加一条未读通知
	Notify(ctx context.Context, userID, message string) error

	// UnreadFor 按追加顺序返回指定用户的未读通知
	UnreadFor(ctx context.Context, userID string) ([]*Notification, error)

	// ListFor 按追加顺序返回指定用户的全部通知(含已读)
	ListFor(ctx context.Context, userID string) ([]*Notification, error)

	// MarkAllRead 将指定用户的全部通知标记为已读,返回标记数量(幂等)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

type service struct {
	repo Repository
}

// NewService 创建通知领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Notify 追加未读通知
func (s *service) Notify(ctx context.Context, userID, message string) error {
	n := NewNotification(uuid.NewString(), userID, message, time.Now())
	return s.persist(s.repo.Append(ctx, n))
}

// UnreadFor 查询未读通知
func (s *service) UnreadFor(ctx context.Context, userID string) ([]*Notification, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread := make([]*Notification, 0, len(all))
	for _, n := range all {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

// ListFor 查询全部通知
func (s *service) ListFor(ctx context.Context, userID string) ([]*Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

// MarkAllRead 全部标记已读
func (s *service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err := s.persist(err); err != nil {
		return 0, err
	}
	return count, nil
}

// persist 快照写入失败只记录日志,内存变更保持生效
func (s *service) persist(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.HasCode(err, apperrors.ErrCodePersistenceWrite) {
		log.Printf("通知账本快照写入失败(内存状态已更新): %v", err)
		return nil
	}
	return err
}
