// Package identity 实现配置文件驱动的静态身份目录
//
// 设计说明:
// 1. 账号在启动时从配置一次性载入,运行期不可变,没有注册/改密接口
// 2. 领域层只依赖user.Directory接口,换成数据库或LDAP实现时领域代码不变
// 3. 密码支持明文(演示用)和bcrypt哈希两种配置方式
package identity

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// StaticDirectory 静态身份目录
type StaticDirectory struct {
	byUsername map[string]*user.User
	byID       map[string]*user.User
}

// NewStaticDirectory 从配置构建身份目录
// 用户名或ID重复视为配置错误
func NewStaticDirectory(users []config.UserConfig) (*StaticDirectory, error) {
	d := &StaticDirectory{
		byUsername: make(map[string]*user.User, len(users)),
		byID:       make(map[string]*user.User, len(users)),
	}

	for _, uc := range users {
		if uc.Password == "" && uc.PasswordHash == "" {
			return nil, fmt.Errorf("账号%s未配置密码", uc.Username)
		}
		if _, dup := d.byUsername[uc.Username]; dup {
			return nil, fmt.Errorf("用户名重复: %s", uc.Username)
		}
		if _, dup := d.byID[uc.ID]; dup {
			return nil, fmt.Errorf("用户ID重复: %s", uc.ID)
		}

		u := &user.User{
			ID:           uc.ID,
			Username:     uc.Username,
			Password:     uc.Password,
			PasswordHash: uc.PasswordHash,
			Role:         user.Role(uc.Role),
		}
		d.byUsername[u.Username] = u
		d.byID[u.ID] = u
	}

	return d, nil
}

// Authenticate 用户名密码认证
// 失败时统一返回认证失败,不区分"用户不存在"和"密码错误"
func (d *StaticDirectory) Authenticate(_ context.Context, username, password string) (*user.User, error) {
	u, ok := d.byUsername[username]
	if !ok {
		return nil, apperrors.ErrAuthFailed
	}

	if u.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			return nil, apperrors.ErrAuthFailed
		}
	} else if u.Password != password {
		return nil, apperrors.ErrAuthFailed
	}

	return u, nil
}

// GetByID 按ID解析用户
// 用户ID是弱引用,查不到时返回占位用户而不是错误
func (d *StaticDirectory) GetByID(_ context.Context, id string) *user.User {
	if u, ok := d.byID[id]; ok {
		return u
	}
	return user.Unknown(id)
}
