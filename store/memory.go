package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/rushteam/topkit/core"
)

// MemoryStore 是内存实现的 KeyValueStore，用于测试/开发/单机运行。
// 进程退出后数据丢失；语义与 RedisStore 保持一致（含同分成员的排序）。
type MemoryStore struct {
	mu     sync.RWMutex
	zsets  map[string]map[string]float64 // zset key -> member -> score
	hashes map[string]map[string][]byte  // hash key -> field -> value
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		zsets:  make(map[string]map[string]float64),
		hashes: make(map[string]map[string][]byte),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.zsets, key)
	delete(m.hashes, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) ZReplace(_ context.Context, key string, members []core.ScoredMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(members) == 0 {
		delete(m.zsets, key)
		return nil
	}
	zset := make(map[string]float64, len(members))
	for _, sm := range members {
		zset[sm.Member] = sm.Score
	}
	m.zsets[key] = zset
	return nil
}

func (m *MemoryStore) ZRevRangeWithScores(_ context.Context, key string, start, stop int64) ([]core.ScoredMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok || len(zset) == 0 {
		return nil, nil
	}

	// 按 score 降序；同分按 member 降序（与 Redis ZREVRANGE 一致）
	pairs := make([]core.ScoredMember, 0, len(zset))
	for member, score := range zset {
		pairs = append(pairs, core.ScoredMember{Member: member, Score: score})
	}
	slices.SortFunc(pairs, func(a, b core.ScoredMember) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.Member, a.Member)
	})

	n := int64(len(pairs))
	if start < 0 {
		start = max(n+start, 0)
	}
	if stop < 0 {
		stop = n + stop
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return nil, nil
	}
	return slices.Clone(pairs[start : stop+1]), nil
}

func (m *MemoryStore) HSet(_ context.Context, key, field string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string][]byte)
	}
	m.hashes[key][field] = slices.Clone(value)
	return nil
}

func (m *MemoryStore) HGetAll(_ context.Context, key string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]byte, len(m.hashes[key]))
	for field, v := range m.hashes[key] {
		result[field] = slices.Clone(v)
	}
	return result, nil
}

var _ core.KeyValueStore = (*MemoryStore)(nil)
