package user

// Role 用户角色
// 固定两种角色：admin可以管理图书与审批借阅，user只能浏览与申请借阅
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User 用户实体
// 设计说明：
// 1. 用户目录对核心引擎是只读的：固定账号集合，不持久化、不可编辑
// 2. Password是演示用明文口令（认证安全性是明确的非目标）
// 3. PasswordHash可选：配置了bcrypt哈希的账号按哈希比对
// 4. 图书记录中的用户ID是弱引用：仅用于查询展示，引用的用户不存在时
//    解析为"未知用户"占位，绝不报错
type User struct {
	ID           string
	Username     string
	Password     string // 明文口令（演示用）
	PasswordHash string // bcrypt哈希（可选，优先于明文）
	Role         Role
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Unknown 未知用户占位
// 弱引用解析失败时返回，Username固定为"未知用户"
func Unknown(id string) *User {
	return &User{
		ID:       id,
		Username: "未知用户",
		Role:     RoleUser,
	}
}
