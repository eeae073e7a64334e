package loan

import (
	"context"

	bookapp "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
)

// PendingRequestsUseCase 待审批列表用例(管理员)
type PendingRequestsUseCase struct {
	bookService book.Service
	directory   user.Directory
}

// NewPendingRequestsUseCase 创建待审批列表用例
func NewPendingRequestsUseCase(bookService book.Service, directory user.Directory) *PendingRequestsUseCase {
	return &PendingRequestsUseCase{
		bookService: bookService,
		directory:   directory,
	}
}

// Execute 返回全部处于待审批状态的图书
func (uc *PendingRequestsUseCase) Execute(ctx context.Context) ([]bookapp.BookView, error) {
	books, err := uc.bookService.PendingRequests(ctx)
	if err != nil {
		return nil, err
	}
	return bookapp.NewBookViews(ctx, books, uc.directory), nil
}
