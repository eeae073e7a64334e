package loan

import (
	"context"

	bookapp "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
)

// ReturnBookUseCase 归还用例
// 只有当前借阅人可以归还自己借的书
type ReturnBookUseCase struct {
	bookService book.Service
	directory   user.Directory
}

// NewReturnBookUseCase 创建归还用例
func NewReturnBookUseCase(bookService book.Service, directory user.Directory) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		bookService: bookService,
		directory:   directory,
	}
}

// Execute 执行归还
func (uc *ReturnBookUseCase) Execute(ctx context.Context, bookID, userID string) (*bookapp.BookView, error) {
	b, err := uc.bookService.ReturnBook(ctx, bookID, userID)
	if err != nil {
		return nil, err
	}
	view := bookapp.NewBookView(ctx, b, uc.directory)
	return &view, nil
}

// ForceReturnUseCase 强制归还用例(管理员)
// 不校验借阅人身份,用于代替离馆用户归还
type ForceReturnUseCase struct {
	bookService book.Service
	directory   user.Directory
}

// NewForceReturnUseCase 创建强制归还用例
func NewForceReturnUseCase(bookService book.Service, directory user.Directory) *ForceReturnUseCase {
	return &ForceReturnUseCase{
		bookService: bookService,
		directory:   directory,
	}
}

// Execute 执行强制归还
func (uc *ForceReturnUseCase) Execute(ctx context.Context, bookID string) (*bookapp.BookView, error) {
	b, err := uc.bookService.ForceReturn(ctx, bookID)
	if err != nil {
		return nil, err
	}
	view := bookapp.NewBookView(ctx, b, uc.directory)
	return &view, nil
}
