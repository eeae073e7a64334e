// Package loan 借阅生命周期的应用层用例
//
// 设计说明:借阅申请、审批、归还都是图书引擎上的状态转换,
// 应用层负责把HTTP层传入的身份信息(当前用户)编排进领域操作
package loan

import (
	"context"

	bookapp "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
)

// RequestLoanUseCase 借阅申请用例
type RequestLoanUseCase struct {
	bookService book.Service
	directory   user.Directory
}

// NewRequestLoanUseCase 创建申请用例
func NewRequestLoanUseCase(bookService book.Service, directory user.Directory) *RequestLoanUseCase {
	return &RequestLoanUseCase{
		bookService: bookService,
		directory:   directory,
	}
}

// Execute 执行借阅申请
// userID来自认证中间件解析的JWT Claims
func (uc *RequestLoanUseCase) Execute(ctx context.Context, bookID, userID string) (*bookapp.BookView, error) {
	b, err := uc.bookService.RequestLoan(ctx, bookID, userID)
	if err != nil {
		return nil, err
	}
	view := bookapp.NewBookView(ctx, b, uc.directory)
	return &view, nil
}
