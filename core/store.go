package core

import "context"

// Store 是存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 领域层不依赖基础设施层
//
// 使用场景：
//   - 持久化最终 Result（排行榜）
//   - 读取历史 Result 做对比 / 展示
//
// 实现：
//   - store.MemoryStore 实现此接口
//   - store.RedisStore 实现此接口
type Store interface {
	// Name 返回存储后端名称（用于日志）
	Name() string

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// Close 关闭连接/释放资源
	Close() error
}

// KeyValueStore 是 Store 的扩展接口，支持有序集合与哈希。
//
//   - 有序集合（SortedSet）：保存 Result 的 (score, id)
//   - 哈希表（Hash）：保存 id -> payload
type KeyValueStore interface {
	Store

	// ZReplace 用 members 整体替换有序集合（members 为空时等价于删除）
	ZReplace(ctx context.Context, key string, members []ScoredMember) error

	// ZRevRangeWithScores 按分数降序获取 [start, stop] 范围内的成员及分数；
	// 同分成员按成员名降序（与 Redis ZREVRANGE 一致）。
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)

	// HSet 写入 Hash 字段
	HSet(ctx context.Context, key, field string, value []byte) error

	// HGetAll 读取整个 Hash
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
}

// ScoredMember 是有序集合中的一个成员。
type ScoredMember struct {
	Member string
	Score  float64
}

// ErrStoreNotFound 表示 key 不存在
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
