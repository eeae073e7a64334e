package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
)

// BookView 图书视图DTO
// 设计说明:用户ID是弱引用,视图层通过身份目录解析为用户名,
// 查不到的ID显示为占位用户名而不是报错
type BookView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Year        int    `json:"year"`
	Genre       string `json:"genre,omitempty"`
	ISBN        string `json:"isbn,omitempty"`
	Stock       int    `json:"stock"`
	Status      string `json:"status"`
	RequestedBy string `json:"requested_by,omitempty"`
	Requester   string `json:"requester,omitempty"`
	RequestedAt string `json:"requested_at,omitempty"`
	BorrowedBy  string `json:"borrowed_by,omitempty"`
	Borrower    string `json:"borrower,omitempty"`
	ApprovedBy  string `json:"approved_by,omitempty"`
	Approver    string `json:"approver,omitempty"`
	ApprovedAt  string `json:"approved_at,omitempty"`
	BorrowUntil string `json:"borrow_until,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

const (
	timeLayout = "2006-01-02 15:04:05"
	dateLayout = "2006-01-02"
)

// NewBookView 构建图书视图
func NewBookView(ctx context.Context, b *book.Book, directory user.Directory) BookView {
	v := BookView{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Year:        b.Year,
		Genre:       b.Genre,
		ISBN:        b.ISBN,
		Stock:       b.Stock,
		Status:      string(b.Status),
		RequestedBy: b.RequestedBy,
		BorrowedBy:  b.BorrowedBy,
		ApprovedBy:  b.ApprovedBy,
		CreatedAt:   b.CreatedAt.Format(timeLayout),
		UpdatedAt:   b.UpdatedAt.Format(timeLayout),
	}

	if b.RequestedBy != "" {
		v.Requester = directory.GetByID(ctx, b.RequestedBy).Username
	}
	if b.BorrowedBy != "" {
		v.Borrower = directory.GetByID(ctx, b.BorrowedBy).Username
	}
	if b.ApprovedBy != "" {
		v.Approver = directory.GetByID(ctx, b.ApprovedBy).Username
	}
	if b.RequestedAt != nil {
		v.RequestedAt = b.RequestedAt.Format(timeLayout)
	}
	if b.ApprovedAt != nil {
		v.ApprovedAt = b.ApprovedAt.Format(timeLayout)
	}
	if b.BorrowUntil != nil {
		v.BorrowUntil = b.BorrowUntil.Format(dateLayout)
	}

	return v
}

// NewBookViews 批量构建图书视图
func NewBookViews(ctx context.Context, books []*book.Book, directory user.Directory) []BookView {
	views := make([]BookView, 0, len(books))
	for _, b := range books {
		views = append(views, NewBookView(ctx, b, directory))
	}
	return views
}
