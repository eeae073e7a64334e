package errors

import (
	"errors"
	"fmt"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Message是用户友好的提示信息
// 3. Fields用于字段级校验错误（字段名 → 错误提示），仅ValidationError使用
// 4. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int               `json:"code"`             // 业务错误码
	Message string            `json:"message"`          // 用户友好的错误提示
	Fields  map[string]string `json:"fields,omitempty"` // 字段级校验错误
	Err     error             `json:"-"`                // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidation 创建字段级校验错误
// 用途：创建/编辑图书时逐字段校验失败，所有字段错误一次性返回给调用方
func NewValidation(fields map[string]string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: "字段校验失败",
		Fields:  fields,
	}
}

// Wrap 包装系统错误（如存储错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WrapCode 以指定错误码包装内部错误
// 用途：持久化写失败、外部查询失败等需要保留具体错误码的场景
func WrapCode(code int, err error, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（存储异常、外部服务调用失败）
//
// 五类操作错误（均在操作边界恢复，绝不导致进程退出）：
// - ValidationError: 字段约束违反（创建/编辑路径，不改变任何状态）
// - PreconditionError: 生命周期状态/库存前置条件不满足（不改变任何状态）
// - AuthError: 认证失败（不创建会话）
// - PersistenceWriteError: 快照写入失败（仅记录日志，内存状态保留变更）
// - ExternalLookupError: 外部元数据查询失败（不影响任何记录）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal         = 50000 // 内部错误
	ErrCodePersistenceWrite = 50001 // 持久化写入失败
	ErrCodeRedisError       = 50002 // Redis错误
	ErrCodeExternalLookup   = 50003 // 外部元数据查询失败

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized = 40100 // 未登录
	ErrCodeInvalidToken = 40101 // Token无效
	ErrCodeTokenExpired = 40102 // Token过期
	ErrCodeAuthFailed   = 40103 // 用户名或密码错误
	ErrCodeForbidden    = 40104 // 无权限（如普通用户访问管理员接口）

	// 资源错误（40400-40499）
	ErrCodeNotFound     = 40400 // 资源不存在(通用)
	ErrCodeBookNotFound = 40402 // 图书不存在

	// 业务规则错误（40000-40099）
	ErrCodePrecondition = 40000 // 生命周期前置条件不满足(通用)
	ErrCodeNoStock      = 40001 // 库存不足
	ErrCodeNotBorrower  = 40002 // 非当前借阅人
	ErrCodeNotAvailable = 40003 // 图书当前不可借阅

	// 参数错误（40900-40999）
	ErrCodeValidation = 40900 // 字段校验失败
	ErrCodeBindError  = 40901 // 参数绑定失败
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal   = New(ErrCodeInternal, "系统内部错误")
	ErrRedisError = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "Token已过期")
	ErrAuthFailed   = New(ErrCodeAuthFailed, "用户名或密码错误")
	ErrForbidden    = New(ErrCodeForbidden, "无权限访问")

	// 参数错误
	ErrBindError = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// HasCode 判断错误链中是否存在指定业务错误码的AppError
func HasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
