package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/notification"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

func testBook(id, title string) *book.Book {
	return book.NewBook(id, title, "测试作者", 2020, "", "", 1)
}

func TestBookRepository_EmptyStore(t *testing.T) {
	ctx := context.Background()

	// 键不存在 → 空集合,不是错误
	repo, err := NewBookRepository(ctx, NewMemory(), "books")
	require.NoError(t, err)

	books, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBookRepository_SaveAndReload(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	repo, err := NewBookRepository(ctx, store, "books")
	require.NoError(t, err)

	b1 := testBook("b-1", "第一本书")
	b2 := testBook("b-2", "第二本书")
	require.NoError(t, repo.Save(ctx, b1))
	require.NoError(t, repo.Save(ctx, b2))

	// 修改b1的状态后整体替换
	require.NoError(t, b1.Request("reader-1", time.Now()))
	require.NoError(t, repo.Save(ctx, b1))

	// 用同一个store重建仓储,状态应完整恢复且保持插入顺序
	reloaded, err := NewBookRepository(ctx, store, "books")
	require.NoError(t, err)

	books, err := reloaded.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "b-1", books[0].ID)
	assert.Equal(t, "b-2", books[1].ID)
	assert.Equal(t, book.StatusRequested, books[0].Status)
	assert.Equal(t, "reader-1", books[0].RequestedBy)
	require.NotNil(t, books[0].RequestedAt)
}

func TestBookRepository_FindAndDelete(t *testing.T) {
	ctx := context.Background()
	repo, err := NewBookRepository(ctx, NewMemory(), "books")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, testBook("b-1", "要删的书")))

	got, err := repo.FindByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "要删的书", got.Title)

	// 返回的是副本,修改不影响仓储
	got.Title = "改过的标题"
	again, err := repo.FindByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "要删的书", again.Title)

	require.NoError(t, repo.Delete(ctx, "b-1"))

	_, err = repo.FindByID(ctx, "b-1")
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "b-1"), book.ErrBookNotFound)
}

// TestBookRepository_WriteFailureKeepsMemory 快照写入失败:
// 返回持久化写入错误码,但内存状态保留变更(允许暂时偏离)
func TestBookRepository_WriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	repo, err := NewBookRepository(ctx, store, "books")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, testBook("b-1", "第一本书")))

	// 之后的写入全部失败
	store.FailWrites = true

	err = repo.Save(ctx, testBook("b-2", "第二本书"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePersistenceWrite))

	// 内存中新书存在
	books, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	// 持久化副本停留在失败前的状态
	store.FailWrites = false
	reloaded, err := NewBookRepository(ctx, store, "books")
	require.NoError(t, err)
	persisted, err := reloaded.List(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, 1, "失败的快照不应落盘")
}

func TestBookRepository_CorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, "books", []byte("not json")))

	_, err := NewBookRepository(ctx, store, "books")
	assert.Error(t, err, "损坏的快照应让启动失败")
}

// TestSnapshotVersionMismatch 版本号未知的快照视同损坏,启动失败
func TestSnapshotVersionMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	blob := []byte(`{"version":99,"records":[{"id":"b-1","title":"未来格式的书"}]}`)
	require.NoError(t, store.Set(ctx, "books", blob))
	require.NoError(t, store.Set(ctx, "notifications", blob))

	_, err := NewBookRepository(ctx, store, "books")
	assert.Error(t, err, "未知版本的图书快照不应被加载")

	_, err = NewNotificationRepository(ctx, store, "notifications")
	assert.Error(t, err, "未知版本的通知快照不应被加载")
}

func TestNotificationRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	repo, err := NewNotificationRepository(ctx, store, "notifications")
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.Append(ctx, notification.NewNotification("n-1", "reader-1", "通知一", now)))
	require.NoError(t, repo.Append(ctx, notification.NewNotification("n-2", "reader-1", "通知二", now)))

	marked, err := repo.MarkAllRead(ctx, "reader-1")
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	// 重建后已读标记保持
	reloaded, err := NewNotificationRepository(ctx, store, "notifications")
	require.NoError(t, err)
	items, err := reloaded.ListByUser(ctx, "reader-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].Read)
	assert.Equal(t, "通知一", items[0].Message)
}
