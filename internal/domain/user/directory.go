package user

import (
	"context"
)

// Directory 用户目录接口（注入式身份查询能力）
// 设计说明：
// 1. 接口定义在domain层（依赖倒置原则），具体实现在infrastructure/identity层
// 2. 便于单元测试（Mock此接口），也便于将来替换为真实的目录服务
// 3. GetByID永不返回错误：引用的用户不存在时返回"未知用户"占位
//    （图书记录中的用户ID是弱引用，缺失不是不变量违反）
type Directory interface {
	// Authenticate 按用户名+口令认证
	// 认证失败返回errors.ErrAuthFailed，不创建任何会话
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// GetByID 按ID查询用户（仅用于展示）
	// 用户不存在时返回Unknown占位，永不返回nil
	GetByID(ctx context.Context, id string) *User
}
