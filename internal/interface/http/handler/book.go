package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	registerBookUseCase *appbook.RegisterBookUseCase
	updateBookUseCase   *appbook.UpdateBookUseCase
	deleteBookUseCase   *appbook.DeleteBookUseCase
	getBookUseCase      *appbook.GetBookUseCase
	listBooksUseCase    *appbook.ListBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	registerBookUseCase *appbook.RegisterBookUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
	deleteBookUseCase *appbook.DeleteBookUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
) *BookHandler {
	return &BookHandler{
		registerBookUseCase: registerBookUseCase,
		updateBookUseCase:   updateBookUseCase,
		deleteBookUseCase:   deleteBookUseCase,
		getBookUseCase:      getBookUseCase,
		listBooksUseCase:    listBooksUseCase,
	}
}

// RegisterBook 登记图书
// @Summary      登记图书
// @Description  管理员登记新图书,状态初始为available
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RegisterBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      400 {object} response.Response "字段校验失败"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/books [post]
func (h *BookHandler) RegisterBook(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.RegisterBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 2. 调用应用层用例
	result, err := h.registerBookUseCase.Execute(c.Request.Context(), appbook.RegisterBookRequest{
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Genre:  req.Genre,
		ISBN:   req.ISBN,
		Stock:  req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBook 编辑图书
// @Summary      编辑图书
// @Description  管理员修改图书描述性字段(状态/库存不受影响)
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Param        request body dto.UpdateBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:     c.Param("id"),
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Genre:  req.Genre,
		ISBN:   req.ISBN,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  管理员删除图书,无条件硬删除(借阅中也允许)
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.deleteBookUseCase.Execute(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	result, err := h.getBookUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  按登记顺序返回图书;普通用户只看到可借阅的图书,管理员看到全部
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        keyword query string false "关键词(标题/作者/ISBN)"
// @Success      200 {object} response.Response{data=[]appbook.BookView}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var query dto.ListBooksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Keyword: query.Keyword,
		IsAdmin: middleware.IsAdmin(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
