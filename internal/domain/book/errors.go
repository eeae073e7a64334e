package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
// 生命周期前置条件错误(PreconditionError):转换失败时状态不发生任何变更,
// 以用户可读的消息返回给调用方
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrNotAvailable 图书当前不可借阅(状态非available或无库存)
	ErrNotAvailable = apperrors.New(apperrors.ErrCodeNotAvailable, "图书当前不可借阅或无库存")

	// ErrNoStock 库存不足(审批时库存已被先批准的借阅耗尽,申请保持待审批)
	ErrNoStock = apperrors.New(apperrors.ErrCodeNoStock, "库存不足,无法批准借阅")

	// ErrNotRequested 图书没有待审批的借阅申请
	ErrNotRequested = apperrors.New(apperrors.ErrCodePrecondition, "图书没有待审批的借阅申请")

	// ErrNotBorrowed 图书当前未借出
	ErrNotBorrowed = apperrors.New(apperrors.ErrCodePrecondition, "图书当前未借出")

	// ErrNotBorrower 非当前借阅人,不能归还
	ErrNotBorrower = apperrors.New(apperrors.ErrCodeNotBorrower, "你不是本书的借阅人")
)
