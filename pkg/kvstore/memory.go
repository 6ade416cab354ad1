package kvstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore 是进程内的键值存储，按 key+value 的字节数为每个 owner 单独计算配额。
// quota <= 0 表示不限制。
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[string]*memorySpace
	quota  int64
}

type memorySpace struct {
	data map[string]string
	used int64
}

// NewMemoryStore 创建一个新的 MemoryStore。
func NewMemoryStore(quota int64) *MemoryStore {
	return &MemoryStore{
		owners: make(map[string]*memorySpace),
		quota:  quota,
	}
}

// Scope 返回 owner 的存储视图。
func (s *MemoryStore) Scope(owner string) Store {
	return &memoryScope{store: s, owner: owner}
}

// SetQuota 调整每个 owner 的配额，已写入的数据不受影响。
func (s *MemoryStore) SetQuota(quota int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota = quota
}

// Used 返回 owner 当前已占用的字节数。
func (s *MemoryStore) Used(owner string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sp, ok := s.owners[owner]; ok {
		return sp.used
	}
	return 0
}

// Keys 返回所有 owner 下按字典序排列的全部键，主要用于调试和测试。
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for _, sp := range s.owners {
		for k := range sp.data {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

type memoryScope struct {
	store *MemoryStore
	owner string
}

func (m *memoryScope) Get(_ context.Context, key string) (string, error) {
	s := m.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sp, ok := s.owners[m.owner]; ok {
		if v, ok := sp.data[key]; ok {
			return v, nil
		}
	}
	return "", ErrNotFound
}

func (m *memoryScope) Set(_ context.Context, key, value string) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.owners[m.owner]
	if !ok {
		sp = &memorySpace{data: make(map[string]string)}
		s.owners[m.owner] = sp
	}
	var old int64
	if prev, ok := sp.data[key]; ok {
		old = entrySize(key, prev)
	}
	next := sp.used - old + entrySize(key, value)
	if metered(m.owner, s.quota) && next > s.quota {
		return ErrQuotaExceeded
	}
	sp.data[key] = value
	sp.used = next
	return nil
}

func (m *memoryScope) Remove(_ context.Context, key string) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.owners[m.owner]
	if !ok {
		return nil
	}
	if prev, ok := sp.data[key]; ok {
		sp.used -= entrySize(key, prev)
		delete(sp.data, key)
	}
	return nil
}
