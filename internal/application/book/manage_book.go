package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
)

// UpdateBookUseCase 图书编辑用例
type UpdateBookUseCase struct {
	bookService book.Service
	directory   user.Directory
}

// NewUpdateBookUseCase 创建编辑用例
func NewUpdateBookUseCase(bookService book.Service, directory user.Directory) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookService: bookService,
		directory:   directory,
	}
}

// UpdateBookRequest 编辑请求DTO
// 只允许修改描述性字段,状态/库存/借阅字段由生命周期操作维护
type UpdateBookRequest struct {
	ID     string
	Title  string
	Author string
	Year   int
	Genre  string
	ISBN   string
}

// Execute 执行编辑用例
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookView, error) {
	b, err := uc.bookService.UpdateBook(ctx, req.ID, book.UpdateParams{
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Genre:  req.Genre,
		ISBN:   req.ISBN,
	})
	if err != nil {
		return nil, err
	}

	view := NewBookView(ctx, b, uc.directory)
	return &view, nil
}

// DeleteBookUseCase 图书删除用例
// 删除是无条件的:借阅中的图书也允许删除
type DeleteBookUseCase struct {
	bookService book.Service
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService}
}

// Execute 执行删除用例
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id string) error {
	return uc.bookService.DeleteBook(ctx, id)
}
