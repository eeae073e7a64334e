package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
)

// ListBooksUseCase 图书列表用例
// 学习要点:角色差异在应用层体现——普通用户只看到可借阅的图书,
// 管理员看到全部图书,领域服务本身只提供过滤参数
type ListBooksUseCase struct {
	bookService book.Service
	directory   user.Directory
}

// NewListBooksUseCase 创建列表用例
func NewListBooksUseCase(bookService book.Service, directory user.Directory) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
		directory:   directory,
	}
}

// ListBooksRequest 列表请求DTO
type ListBooksRequest struct {
	Keyword string // 关键词(标题/作者/ISBN子串匹配)
	IsAdmin bool   // 管理员可见全部,普通用户只见可借阅
}

// Execute 执行列表用例
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) ([]BookView, error) {
	books, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Keyword:       req.Keyword,
		AvailableOnly: !req.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	return NewBookViews(ctx, books, uc.directory), nil
}

// GetBookUseCase 图书详情用例
type GetBookUseCase struct {
	bookService book.Service
	directory   user.Directory
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(bookService book.Service, directory user.Directory) *GetBookUseCase {
	return &GetBookUseCase{
		bookService: bookService,
		directory:   directory,
	}
}

// Execute 执行详情用例
func (uc *GetBookUseCase) Execute(ctx context.Context, id string) (*BookView, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewBookView(ctx, b, uc.directory)
	return &view, nil
}
