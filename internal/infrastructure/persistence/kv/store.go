// Package kv 实现集合快照式持久化
//
// 设计说明:
// 1. 持久化契约是键值对语义:一个集合对应一个键,值是整个集合的JSON快照
// 2. 仓储在内存中持有权威状态,每次变更后把完整集合写回存储
// 3. 快照写失败不回滚内存变更:返回持久化写入错误码,由领域服务
//    记录日志后继续(尽力而为的持久化)
// 4. 启动时读取一次快照恢复状态;键不存在视为空集合,不是错误
package kv

import (
	"context"
	"errors"
	"sync"
)

// Store 键值快照存储接口
// 实现:redis.Store(Redis字符串键)、file.Store(文件目录)、kv.Memory(测试)
type Store interface {
	// Get 读取键对应的blob
	// 键不存在时返回(nil, false, nil),不是错误
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set 整体覆盖键对应的blob
	Set(ctx context.Context, key string, value []byte) error
}

// Memory 内存实现,用于测试
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte

	// FailWrites 为true时Set返回SetErr,用于模拟快照写入失败
	FailWrites bool
	SetErr     error
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		if m.SetErr != nil {
			return m.SetErr
		}
		return errors.New("存储写入失败")
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}
