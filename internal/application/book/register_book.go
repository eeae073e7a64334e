package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
)

// RegisterBookUseCase 图书登记用例
// 设计说明:
// 1. 应用层负责用例编排,协调领域服务完成业务流程
// 2. 输入输出使用DTO(Data Transfer Object),与HTTP层解耦
// 3. 字段校验由领域服务负责,应用层只做流程编排
type RegisterBookUseCase struct {
	bookService book.Service
	directory   user.Directory
}

// NewRegisterBookUseCase 创建登记用例
func NewRegisterBookUseCase(bookService book.Service, directory user.Directory) *RegisterBookUseCase {
	return &RegisterBookUseCase{
		bookService: bookService,
		directory:   directory,
	}
}

// RegisterBookRequest 登记请求DTO
type RegisterBookRequest struct {
	Title  string // 书名
	Author string // 作者
	Year   int    // 出版年份
	Genre  string // 类型(可选)
	ISBN   string // ISBN(可选)
	Stock  int    // 初始库存,未指定时默认1
}

// Execute 执行登记用例
func (uc *RegisterBookUseCase) Execute(ctx context.Context, req RegisterBookRequest) (*BookView, error) {
	b, err := uc.bookService.AddBook(ctx, book.AddParams{
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Genre:  req.Genre,
		ISBN:   req.ISBN,
		Stock:  req.Stock,
	})
	if err != nil {
		return nil, err
	}

	view := NewBookView(ctx, b, uc.directory)
	return &view, nil
}
