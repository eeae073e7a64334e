package handler

import (
	"github.com/gin-gonic/gin"

	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// LoanHandler 借阅HTTP处理器
type LoanHandler struct {
	requestLoanUseCase     *apploan.RequestLoanUseCase
	approveLoanUseCase     *apploan.ApproveLoanUseCase
	rejectLoanUseCase      *apploan.RejectLoanUseCase
	returnBookUseCase      *apploan.ReturnBookUseCase
	forceReturnUseCase     *apploan.ForceReturnUseCase
	pendingRequestsUseCase *apploan.PendingRequestsUseCase
}

// NewLoanHandler 创建借阅处理器
func NewLoanHandler(
	requestLoanUseCase *apploan.RequestLoanUseCase,
	approveLoanUseCase *apploan.ApproveLoanUseCase,
	rejectLoanUseCase *apploan.RejectLoanUseCase,
	returnBookUseCase *apploan.ReturnBookUseCase,
	forceReturnUseCase *apploan.ForceReturnUseCase,
	pendingRequestsUseCase *apploan.PendingRequestsUseCase,
) *LoanHandler {
	return &LoanHandler{
		requestLoanUseCase:     requestLoanUseCase,
		approveLoanUseCase:     approveLoanUseCase,
		rejectLoanUseCase:      rejectLoanUseCase,
		returnBookUseCase:      returnBookUseCase,
		forceReturnUseCase:     forceReturnUseCase,
		pendingRequestsUseCase: pendingRequestsUseCase,
	}
}

// RequestLoan 申请借阅
// @Summary      申请借阅
// @Description  用户对可借阅的图书发起借阅申请(available → requested)
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      400 {object} response.Response "图书不可借阅"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/request [post]
func (h *LoanHandler) RequestLoan(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.requestLoanUseCase.Execute(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ApproveLoan 批准借阅
// @Summary      批准借阅
// @Description  管理员批准借阅申请(requested → borrowed),扣减库存并通知借阅人
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Param        request body dto.ApproveLoanRequest false "审批参数"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      400 {object} response.Response "图书不在待审批状态或库存不足"
// @Router       /api/v1/books/{id}/approve [post]
func (h *LoanHandler) ApproveLoan(c *gin.Context) {
	// 请求体可省略(使用默认借期)
	var req dto.ApproveLoanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
			return
		}
	}

	adminID := middleware.MustGetUserID(c)

	result, err := h.approveLoanUseCase.Execute(c.Request.Context(), apploan.ApproveLoanRequest{
		BookID:       c.Param("id"),
		AdminID:      adminID,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RejectLoan 拒绝借阅
// @Summary      拒绝借阅
// @Description  管理员拒绝借阅申请(requested → available),不发送通知
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      400 {object} response.Response "图书不在待审批状态"
// @Router       /api/v1/books/{id}/reject [post]
func (h *LoanHandler) RejectLoan(c *gin.Context) {
	result, err := h.rejectLoanUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ReturnBook 归还图书
// @Summary      归还图书
// @Description  借阅人归还图书(borrowed → available),只有借阅人本人可归还
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      400 {object} response.Response "不是当前借阅人"
// @Router       /api/v1/books/{id}/return [post]
func (h *LoanHandler) ReturnBook(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.returnBookUseCase.Execute(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ForceReturn 强制归还
// @Summary      强制归还
// @Description  管理员代替借阅人归还,不校验借阅人身份
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      400 {object} response.Response "图书不在借出状态"
// @Router       /api/v1/books/{id}/force-return [post]
func (h *LoanHandler) ForceReturn(c *gin.Context) {
	result, err := h.forceReturnUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// PendingRequests 待审批列表
// @Summary      待审批列表
// @Description  管理员查看全部待审批的借阅申请
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appbook.BookView}
// @Router       /api/v1/loans/pending [get]
func (h *LoanHandler) PendingRequests(c *gin.Context) {
	result, err := h.pendingRequestsUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
