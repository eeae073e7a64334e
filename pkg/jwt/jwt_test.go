package jwt

import (
	"testing"
	"time"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func newTestManager(accessExpire time.Duration) *Manager {
	return NewManager("test-secret", accessExpire, 24*time.Hour)
}

// TestGenerateAndParse 测试Token生成与解析
func TestGenerateAndParse(t *testing.T) {
	m := newTestManager(2 * time.Hour)

	pair, err := m.GenerateToken("u-1", "admin", "admin")
	if err != nil {
		t.Fatalf("生成Token失败: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("Token对不应为空")
	}

	claims, err := m.ParseToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("解析Token失败: %v", err)
	}
	if claims.UserID != "u-1" {
		t.Errorf("UserID错误: expected=u-1, got=%s", claims.UserID)
	}
	if claims.Username != "admin" {
		t.Errorf("Username错误: expected=admin, got=%s", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("Role错误: expected=admin, got=%s", claims.Role)
	}
}

// TestParseExpiredToken 测试过期Token
func TestParseExpiredToken(t *testing.T) {
	m := newTestManager(-time.Minute) // 生成即过期

	pair, err := m.GenerateToken("u-1", "admin", "admin")
	if err != nil {
		t.Fatalf("生成Token失败: %v", err)
	}

	_, err = m.ParseToken(pair.AccessToken)
	if !apperrors.HasCode(err, apperrors.ErrCodeTokenExpired) {
		t.Errorf("期望Token过期错误, got: %v", err)
	}
}

// TestParseInvalidToken 测试非法Token
func TestParseInvalidToken(t *testing.T) {
	m := newTestManager(2 * time.Hour)

	_, err := m.ParseToken("not-a-token")
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidToken) {
		t.Errorf("期望无效Token错误, got: %v", err)
	}

	// 不同密钥签发的Token
	other := NewManager("other-secret", 2*time.Hour, 24*time.Hour)
	pair, err := other.GenerateToken("u-1", "admin", "admin")
	if err != nil {
		t.Fatalf("生成Token失败: %v", err)
	}
	if _, err := m.ParseToken(pair.AccessToken); err == nil {
		t.Error("不同密钥签发的Token应解析失败")
	}
}

// TestRefreshAccessToken 测试刷新Access Token
func TestRefreshAccessToken(t *testing.T) {
	m := newTestManager(2 * time.Hour)

	pair, err := m.GenerateToken("u-1", "zhangsan", "user")
	if err != nil {
		t.Fatalf("生成Token失败: %v", err)
	}

	newAccess, err := m.RefreshAccessToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("刷新Token失败: %v", err)
	}

	claims, err := m.ParseToken(newAccess)
	if err != nil {
		t.Fatalf("解析新Token失败: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != "user" {
		t.Errorf("新Token的Claims错误: %+v", claims)
	}
}
