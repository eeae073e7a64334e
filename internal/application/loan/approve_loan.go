package loan

import (
	"context"

	bookapp "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
)

// ApproveLoanUseCase 借阅审批用例(管理员)
// 批准成功后领域服务会向借阅人追加一条通知
type ApproveLoanUseCase struct {
	bookService book.Service
	directory   user.Directory
}

// NewApproveLoanUseCase 创建审批用例
func NewApproveLoanUseCase(bookService book.Service, directory user.Directory) *ApproveLoanUseCase {
	return &ApproveLoanUseCase{
		bookService: bookService,
		directory:   directory,
	}
}

// ApproveLoanRequest 审批请求DTO
type ApproveLoanRequest struct {
	BookID       string
	AdminID      string // 审批人,来自JWT Claims
	DurationDays int    // 借期(天),<=0时使用默认借期
}

// Execute 执行批准
func (uc *ApproveLoanUseCase) Execute(ctx context.Context, req ApproveLoanRequest) (*bookapp.BookView, error) {
	b, err := uc.bookService.ApproveLoan(ctx, req.BookID, req.AdminID, req.DurationDays)
	if err != nil {
		return nil, err
	}
	view := bookapp.NewBookView(ctx, b, uc.directory)
	return &view, nil
}

// RejectLoanUseCase 借阅拒绝用例(管理员)
// 拒绝只回退状态,不发送通知
type RejectLoanUseCase struct {
	bookService book.Service
	directory   user.Directory
}

// NewRejectLoanUseCase 创建拒绝用例
func NewRejectLoanUseCase(bookService book.Service, directory user.Directory) *RejectLoanUseCase {
	return &RejectLoanUseCase{
		bookService: bookService,
		directory:   directory,
	}
}

// Execute 执行拒绝
func (uc *RejectLoanUseCase) Execute(ctx context.Context, bookID string) (*bookapp.BookView, error) {
	b, err := uc.bookService.RejectLoan(ctx, bookID)
	if err != nil {
		return nil, err
	}
	view := bookapp.NewBookView(ctx, b, uc.directory)
	return &view, nil
}
