package kv

import (
	"context"
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// json 使用兼容标准库行为的jsoniter配置(序列化更快,语义一致)
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// snapshotVersion 快照格式版本,为将来的格式演进预留
const snapshotVersion = 1

// bookSnapshot 图书集合的持久化快照信封
type bookSnapshot struct {
	Version int          `json:"version"`
	Records []*book.Book `json:"records"`
}

// BookRepository 图书仓储实现
// 学习要点:
// 1. 内存持有权威状态:order保持插入顺序,index提供ID查找
// 2. 每次变更后整体写回快照;写失败返回持久化错误码,内存变更保留
// 3. 读操作返回深拷贝,调用方修改副本不会污染仓储状态
type BookRepository struct {
	mu    sync.Mutex
	store Store
	key   string

	order []string
	index map[string]*book.Book
}

// NewBookRepository 创建图书仓储并从快照恢复状态
// 键不存在时初始化空集合;快照损坏时返回错误(启动失败)
func NewBookRepository(ctx context.Context, store Store, key string) (*BookRepository, error) {
	r := &BookRepository{
		store: store,
		key:   key,
		index: make(map[string]*book.Book),
	}

	blob, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("读取图书集合快照失败: %w", err)
	}
	if ok {
		var snap bookSnapshot
		if err := json.Unmarshal(blob, &snap); err != nil {
			return nil, fmt.Errorf("解析图书集合快照失败: %w", err)
		}
		if snap.Version != snapshotVersion {
			return nil, fmt.Errorf("不支持的图书集合快照版本: %d", snap.Version)
		}
		for _, b := range snap.Records {
			r.order = append(r.order, b.ID)
			r.index[b.ID] = b
		}
	}

	return r, nil
}

// Save 插入或整体替换一本图书
func (r *BookRepository) Save(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[b.ID]; !exists {
		r.order = append(r.order, b.ID)
	}
	r.index[b.ID] = b.Clone()

	return r.snapshot(ctx)
}

// FindByID 按ID查找,返回深拷贝
func (r *BookRepository) FindByID(_ context.Context, id string) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.index[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b.Clone(), nil
}

// Delete 硬删除
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.index, id)
	for i, bid := range r.order {
		if bid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return r.snapshot(ctx)
}

// List 按插入顺序返回全部图书的深拷贝
func (r *BookRepository) List(_ context.Context) ([]*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*book.Book, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.index[id].Clone())
	}
	return result, nil
}

// snapshot 把整个集合序列化后写回存储
// 调用方必须已持有r.mu
func (r *BookRepository) snapshot(ctx context.Context) error {
	snap := bookSnapshot{Version: snapshotVersion, Records: make([]*book.Book, 0, len(r.order))}
	for _, id := range r.order {
		snap.Records = append(snap.Records, r.index[id])
	}

	blob, err := json.Marshal(snap)
	if err != nil {
		return apperrors.WrapCode(apperrors.ErrCodePersistenceWrite, err, "序列化图书集合快照失败")
	}
	if err := r.store.Set(ctx, r.key, blob); err != nil {
		metrics.IncCounterVec(metrics.PersistenceWriteFailuresTotal, map[string]string{"collection": "books"})
		return apperrors.WrapCode(apperrors.ErrCodePersistenceWrite, err, "写入图书集合快照失败")
	}
	return nil
}
