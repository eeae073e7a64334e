package book

import (
	"time"
)

// Status 图书生命周期状态
// 状态机（每本图书一个status字段）：
//
//	available → requested（用户申请借阅）
//	requested → borrowed （管理员批准）
//	requested → available（管理员拒绝）
//	borrowed  → available（借阅人归还 / 管理员强制归还）
type Status string

const (
	StatusAvailable Status = "available" // 可借阅
	StatusRequested Status = "requested" // 已有借阅申请待审批
	StatusBorrowed  Status = "borrowed"  // 已借出
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,包含图书的核心属性与借阅生命周期字段
// 2. ID是创建时生成的不透明唯一标识(UUID),记录存续期内不变
// 3. Stock是当前未借出的实体副本数,不变量:Stock >= 0 恒成立
// 4. RequestedBy/BorrowedBy/ApprovedBy是用户ID弱引用(仅用于查询展示,
//    空字符串表示缺省);时间字段用指针表达"缺省"
// 5. 状态不变量:
//    - requested ⇒ RequestedBy、RequestedAt已设置
//    - borrowed  ⇒ BorrowedBy、ApprovedBy、ApprovedAt、BorrowUntil已设置
//    - available ⇒ 以上字段全部清空
type Book struct {
	ID          string
	Title       string // 书名(3-100字符)
	Author      string // 作者(3-100字符)
	Year        int    // 出版年份(1000 ≤ year ≤ 当前年份+1)
	Genre       string // 类型(可选,≤50字符)
	ISBN        string // ISBN(可选,须通过ISBN-10/13校验位检查)
	Stock       int    // 库存数量(未借出副本数)
	Status      Status
	RequestedBy string     // 申请人用户ID(弱引用)
	BorrowedBy  string     // 借阅人用户ID(弱引用)
	ApprovedBy  string     // 审批人用户ID(弱引用)
	RequestedAt *time.Time // 申请时间
	ApprovedAt  *time.Time // 审批时间
	BorrowUntil *time.Time // 应还截止时间(仅记录,不自动强制到期)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
// 字段校验由调用方(领域服务)先完成;stock未指定(<=0)时默认为1
func NewBook(id, title, author string, year int, genre, isbn string, stock int) *Book {
	if stock <= 0 {
		stock = 1
	}
	now := time.Now()
	return &Book{
		ID:        id,
		Title:     title,
		Author:    author,
		Year:      year,
		Genre:     genre,
		ISBN:      isbn,
		Stock:     stock,
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Request 申请借阅(available → requested)
// 前置条件:Status == available 且 Stock > 0,否则不产生任何变更
func (b *Book) Request(userID string, now time.Time) error {
	if b.Status != StatusAvailable || b.Stock <= 0 {
		return ErrNotAvailable
	}
	b.Status = StatusRequested
	b.RequestedBy = userID
	b.RequestedAt = &now
	b.UpdatedAt = now
	return nil
}

// Approve 批准借阅(requested → borrowed)
// 前置条件:Status == requested 且 Stock > 0
// 业务规则:申请时不重新校验库存,同一本书先审批者先得;
// 库存已被耗尽时返回ErrNoStock,申请保持待审批状态
func (b *Book) Approve(adminID string, duration time.Duration, now time.Time) error {
	if b.Status != StatusRequested {
		return ErrNotRequested
	}
	if b.Stock <= 0 {
		return ErrNoStock
	}
	until := now.Add(duration)
	b.Status = StatusBorrowed
	b.BorrowedBy = b.RequestedBy
	b.RequestedBy = ""
	b.Stock--
	b.ApprovedAt = &now
	b.ApprovedBy = adminID
	b.BorrowUntil = &until
	b.UpdatedAt = now
	return nil
}

// Reject 拒绝借阅(requested → available)
// 清空申请字段;按产品现状不发送任何通知(与批准不对称)
func (b *Book) Reject(now time.Time) error {
	if b.Status != StatusRequested {
		return ErrNotRequested
	}
	b.Status = StatusAvailable
	b.RequestedBy = ""
	b.RequestedAt = nil
	b.UpdatedAt = now
	return nil
}

// ReturnBy 借阅人归还(borrowed → available)
// 前置条件:Status == borrowed 且 BorrowedBy == userID
func (b *Book) ReturnBy(userID string, now time.Time) error {
	if b.Status != StatusBorrowed {
		return ErrNotBorrowed
	}
	if b.BorrowedBy != userID {
		return ErrNotBorrower
	}
	b.clearLoan(now)
	return nil
}

// ForceReturn 管理员强制归还(borrowed → available)
// 与ReturnBy相同的效果,但不校验借阅人身份
func (b *Book) ForceReturn(now time.Time) error {
	if b.Status != StatusBorrowed {
		return ErrNotBorrowed
	}
	b.clearLoan(now)
	return nil
}

// clearLoan 清空全部借阅字段并回补库存
func (b *Book) clearLoan(now time.Time) {
	b.Status = StatusAvailable
	b.BorrowedBy = ""
	b.Stock++
	b.BorrowUntil = nil
	b.ApprovedAt = nil
	b.ApprovedBy = ""
	b.UpdatedAt = now
}

// UpdateInfo 更新图书描述性信息(领域行为)
// 注意:仅限title/author/year/genre/isbn,不得用于绕过生命周期转换
func (b *Book) UpdateInfo(title, author string, year int, genre, isbn string) {
	b.Title = title
	b.Author = author
	b.Year = year
	b.Genre = genre
	b.ISBN = isbn
	b.UpdatedAt = time.Now()
}

// Clone 返回实体的独立副本
// 仓储读取时返回副本,保证前置条件失败的转换不会污染已存储的状态
func (b *Book) Clone() *Book {
	c := *b
	c.RequestedAt = cloneTime(b.RequestedAt)
	c.ApprovedAt = cloneTime(b.ApprovedAt)
	c.BorrowUntil = cloneTime(b.BorrowUntil)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
