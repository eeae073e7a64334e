package book

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// =========================================
// 测试替身
// =========================================

// fakeRepo 内存仓储,可注入快照写入失败
type fakeRepo struct {
	mu        sync.Mutex
	order     []string
	books     map[string]*Book
	failWrite bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{books: make(map[string]*Book)}
}

func (r *fakeRepo) Save(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		r.order = append(r.order, b.ID)
	}
	r.books[b.ID] = b.Clone()
	if r.failWrite {
		return apperrors.WrapCode(apperrors.ErrCodePersistenceWrite, errors.New("存储不可用"), "写入快照失败")
	}
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	return b.Clone(), nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(r.books, id)
	for i, bid := range r.order {
		if bid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRepo) List(_ context.Context) ([]*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*Book, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.books[id].Clone())
	}
	return result, nil
}

// fakeNotifier 记录全部发出的通知
type fakeNotifier struct {
	mu       sync.Mutex
	messages map[string][]string // userID → messages
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{messages: make(map[string][]string)}
}

func (n *fakeNotifier) Notify(_ context.Context, userID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[userID] = append(n.messages[userID], message)
	return nil
}

func (n *fakeNotifier) count(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages[userID])
}

// fakeDirectory 固定账号的身份目录
type fakeDirectory struct{}

func (fakeDirectory) Authenticate(_ context.Context, _, _ string) (*user.User, error) {
	return nil, apperrors.ErrAuthFailed
}

func (fakeDirectory) GetByID(_ context.Context, id string) *user.User {
	switch id {
	case "admin-1":
		return &user.User{ID: id, Username: "admin", Role: user.RoleAdmin}
	case "reader-1":
		return &user.User{ID: id, Username: "zhangsan", Role: user.RoleUser}
	default:
		return user.Unknown(id)
	}
}

func newTestService(repo *fakeRepo, notifier *fakeNotifier) Service {
	return NewService(repo, notifier, fakeDirectory{}, nil)
}

func addTestBook(t *testing.T, svc Service, title string, stock int) *Book {
	t.Helper()
	b, err := svc.AddBook(context.Background(), AddParams{
		Title:  title,
		Author: "测试作者",
		Year:   2020,
		Stock:  stock,
	})
	require.NoError(t, err)
	return b
}

// =========================================
// 用例测试
// =========================================

func TestService_AddBook_Validation(t *testing.T) {
	svc := newTestService(newFakeRepo(), newFakeNotifier())
	ctx := context.Background()

	_, err := svc.AddBook(ctx, AddParams{
		Title:  "ab", // 太短
		Author: "",
		Year:   999,
		ISBN:   "123",
		Stock:  -1,
	})
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "title")
	assert.Contains(t, appErr.Fields, "author")
	assert.Contains(t, appErr.Fields, "year")
	assert.Contains(t, appErr.Fields, "isbn")
	assert.Contains(t, appErr.Fields, "stock")
}

func TestService_AddBook_Defaults(t *testing.T) {
	svc := newTestService(newFakeRepo(), newFakeNotifier())

	b := addTestBook(t, svc, "默认库存测试书", 0)
	assert.Equal(t, 1, b.Stock)
	assert.Equal(t, StatusAvailable, b.Status)
	assert.NotEmpty(t, b.ID, "ID应为生成的UUID")
}

func TestService_ApproveLoan_NotifiesBorrower(t *testing.T) {
	repo := newFakeRepo()
	notifier := newFakeNotifier()
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	b := addTestBook(t, svc, "Go语言实战", 1)

	_, err := svc.RequestLoan(ctx, b.ID, "reader-1")
	require.NoError(t, err)
	assert.Equal(t, 0, notifier.count("reader-1"), "申请阶段不发通知")

	approved, err := svc.ApproveLoan(ctx, b.ID, "admin-1", 0)
	require.NoError(t, err)
	assert.Equal(t, StatusBorrowed, approved.Status)
	require.NotNil(t, approved.BorrowUntil)

	// 默认借期7天
	expected := approved.ApprovedAt.Add(DefaultLoanDays * 24 * time.Hour)
	assert.Equal(t, expected.Unix(), approved.BorrowUntil.Unix())

	// 恰好一条通知,内容包含书名、审批人用户名、应还日期
	require.Equal(t, 1, notifier.count("reader-1"))
	msg := notifier.messages["reader-1"][0]
	assert.Contains(t, msg, "Go语言实战")
	assert.Contains(t, msg, "admin", "通知应包含审批人用户名")
	assert.Contains(t, msg, approved.BorrowUntil.Format("2006-01-02"))
}

func TestService_RejectLoan_NoNotification(t *testing.T) {
	repo := newFakeRepo()
	notifier := newFakeNotifier()
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	b := addTestBook(t, svc, "Go语言实战", 1)
	_, err := svc.RequestLoan(ctx, b.ID, "reader-1")
	require.NoError(t, err)

	rejected, err := svc.RejectLoan(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, rejected.Status)
	assert.Equal(t, 0, notifier.count("reader-1"), "拒绝不发送通知")
}

func TestService_PersistenceFailureKeepsMutation(t *testing.T) {
	repo := newFakeRepo()
	notifier := newFakeNotifier()
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	b := addTestBook(t, svc, "Go语言实战", 1)

	// 之后的快照写入全部失败
	repo.failWrite = true

	// 变更操作依然成功(尽力而为的持久化)
	updated, err := svc.RequestLoan(ctx, b.ID, "reader-1")
	require.NoError(t, err, "快照写失败不应让操作失败")
	assert.Equal(t, StatusRequested, updated.Status)

	// 内存状态已更新
	got, err := svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, got.Status)
}

func TestService_DeleteBook_Unconditional(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeNotifier())
	ctx := context.Background()

	b := addTestBook(t, svc, "Go语言实战", 1)
	_, err := svc.RequestLoan(ctx, b.ID, "reader-1")
	require.NoError(t, err)
	_, err = svc.ApproveLoan(ctx, b.ID, "admin-1", 7)
	require.NoError(t, err)

	// 借出状态也允许删除
	require.NoError(t, svc.DeleteBook(ctx, b.ID))

	_, err = svc.GetBook(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestService_ListBooks_Filters(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeNotifier())
	ctx := context.Background()

	b1 := addTestBook(t, svc, "Go语言实战", 1)
	addTestBook(t, svc, "沙丘三部曲", 1)

	// 借出第一本
	_, err := svc.RequestLoan(ctx, b1.ID, "reader-1")
	require.NoError(t, err)
	_, err = svc.ApproveLoan(ctx, b1.ID, "admin-1", 7)
	require.NoError(t, err)

	t.Run("管理员看到全部", func(t *testing.T) {
		all, err := svc.ListBooks(ctx, ListParams{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("仅可借阅过滤", func(t *testing.T) {
		available, err := svc.ListBooks(ctx, ListParams{AvailableOnly: true})
		require.NoError(t, err)
		require.Len(t, available, 1)
		assert.Equal(t, "沙丘三部曲", available[0].Title)
	})

	t.Run("关键词搜索不区分大小写", func(t *testing.T) {
		hits, err := svc.ListBooks(ctx, ListParams{Keyword: "go语言"})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, b1.ID, hits[0].ID)

		none, err := svc.ListBooks(ctx, ListParams{Keyword: "不存在的书"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestService_PendingRequests(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeNotifier())
	ctx := context.Background()

	b1 := addTestBook(t, svc, "图书甲甲甲", 1)
	b2 := addTestBook(t, svc, "图书乙乙乙", 1)
	addTestBook(t, svc, "图书丙丙丙", 1)

	_, err := svc.RequestLoan(ctx, b1.ID, "reader-1")
	require.NoError(t, err)
	_, err = svc.RequestLoan(ctx, b2.ID, "reader-1")
	require.NoError(t, err)

	pending, err := svc.PendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	// 登记顺序保持
	assert.Equal(t, b1.ID, pending[0].ID)
	assert.Equal(t, b2.ID, pending[1].ID)
}

// TestService_ConcurrentApprove 并发审批同一本书:
// 每本书的生命周期转换互斥,库存不会被扣成负数,通知只追加一条
func TestService_ConcurrentApprove(t *testing.T) {
	repo := newFakeRepo()
	notifier := newFakeNotifier()
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	b := addTestBook(t, svc, "抢手的书抢手的书", 1)
	_, err := svc.RequestLoan(ctx, b.ID, "reader-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	successes := 0
	var mu sync.Mutex
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ApproveLoan(ctx, b.ID, "admin-1", 7); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "同一申请只能被批准一次")
	assert.Equal(t, 1, notifier.count("reader-1"), "失败的审批不追加通知")

	got, err := svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.GreaterOrEqual(t, got.Stock, 0, "库存不变量")
}

// TestService_ApproveNoStock 库存为零时审批失败,不追加任何通知
func TestService_ApproveNoStock(t *testing.T) {
	repo := newFakeRepo()
	notifier := newFakeNotifier()
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	b := NewBook("b-empty", "没库存的书", "测试作者", 2020, "", "", 1)
	require.NoError(t, b.Request("reader-1", time.Now()))
	b.Stock = 0
	require.NoError(t, repo.Save(ctx, b))

	_, err := svc.ApproveLoan(ctx, b.ID, "admin-1", 7)
	assert.ErrorIs(t, err, ErrNoStock)
	assert.Equal(t, 0, notifier.count("reader-1"))

	// 申请保持待审批状态
	got, err := svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, got.Status)
	assert.Equal(t, "reader-1", got.RequestedBy)
}

func TestService_UpdateBook_NotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), newFakeNotifier())

	_, err := svc.UpdateBook(context.Background(), "missing", UpdateParams{
		Title:  "标题标题标题",
		Author: "作者作者作者",
		Year:   2020,
	})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestMatchKeyword(t *testing.T) {
	b := &Book{Title: "The Go Programming Language", Author: "Donovan", ISBN: "9780134190440"}

	assert.True(t, strings.Contains(strings.ToLower(b.Title), "go"))
	assert.True(t, matchKeyword(b, "GO"))
	assert.True(t, matchKeyword(b, "dono"))
	assert.True(t, matchKeyword(b, "0134190"))
	assert.False(t, matchKeyword(b, "rust"))
}
