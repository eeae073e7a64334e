package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Store 基于Redis字符串键的集合快照存储
// 设计说明:一个集合对应一个字符串键,值是集合的完整JSON快照,
// 不设置过期时间(数据不是缓存,是权威持久化副本)
type Store struct {
	client *redis.Client
}

// NewStore 创建Redis快照存储
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get 读取快照blob
// 键不存在返回(nil, false, nil),语义是空集合
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

// Set 整体覆盖快照blob
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}
