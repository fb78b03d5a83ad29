// Package store 实现 core.KeyValueStore，并提供 Result 的持久化与输出（Sink）。
//
// Result 以排行榜形式保存：
//   - 有序集合 <key>：member = 标识，score = 分数
//   - 哈希 <key>:payload：标识 -> 原始记录（仅当候选携带 Payload）
//
// 示例：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	_ = store.SaveResult(ctx, kv, "topk:users", res)
package store

import "github.com/rushteam/topkit/core"

// ErrNotFound 是 core.ErrStoreNotFound 的别名，便于调用方只依赖 store 包。
var ErrNotFound = core.ErrStoreNotFound

// PayloadKey 返回保存 payload 的哈希 key。
func PayloadKey(key string) string {
	return key + ":payload"
}

// IDKey 返回保存 成员名 -> 原始 ID 映射的哈希 key，只记录重复 ID 生成的成员名。
func IDKey(key string) string {
	return key + ":id"
}
