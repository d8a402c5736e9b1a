package storage

import (
	"context"
	"sync"
)

// MemoryKV 进程内键值存储，作为无外部依赖环境下的兜底实现
type MemoryKV struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryKV 创建内存键值存储
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string]string)}
}

// Get 读取键值
func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	return value, ok, nil
}

// Set 写入键值
func (s *MemoryKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

// Delete 删除键
func (s *MemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
