// Package file 实现基于本地文件的集合快照存储
//
// 设计说明:每个键对应数据目录下的一个JSON文件(books → books.json),
// 写入先落临时文件再原子重命名,避免进程中断留下半个快照
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store 文件快照存储
type Store struct {
	dir string
}

// NewStore 创建文件存储,数据目录不存在时自动创建
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Get 读取键对应的快照文件
// 文件不存在返回(nil, false, nil),语义是空集合
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	blob, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

// Set 整体覆盖快照文件(写临时文件后原子重命名)
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	target := s.path(key)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
