package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 实现方持有按插入顺序排列的有序集合(id → 记录),每次变更后
//    将完整集合快照写入底层键值存储(非增量)
// 3. 快照写入失败应返回ErrCodePersistenceWrite错误码,但内存变更必须保留
//    (尽力而为的持久化,内存状态与持久化状态允许静默偏离)
// 4. 便于Mock测试,不依赖具体存储实现
type Repository interface {
	// Save 创建或替换图书(按ID),新记录追加到集合末尾
	Save(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书,返回独立副本
	// 不存在时返回ErrBookNotFound
	FindByID(ctx context.Context, id string) (*Book, error)

	// Delete 删除图书(硬删除,无条件,借阅中也允许删除)
	// 不存在时返回ErrBookNotFound
	Delete(ctx context.Context, id string) error

	// List 按插入顺序返回全部图书的独立副本
	List(ctx context.Context) ([]*Book, error)
}

// ListParams 列表查询参数
// 关键词在标题、作者、ISBN上做子串匹配(不区分大小写);
// AvailableOnly过滤出可借阅且有库存的图书(普通用户视角)
type ListParams struct {
	Keyword       string
	AvailableOnly bool
}
