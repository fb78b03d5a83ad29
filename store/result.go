package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/rushteam/topkit/core"
)

// SaveResult 把 Result 写成排行榜：有序集合整体替换，payload 写入 <key>:payload。
//
// 有序集合的成员默认就是候选 ID。同一 ID 在 Result 中出现多次时，后出现的
// 候选使用 "<id>#<n>" 形式的成员名，原始 ID 记录在 <key>:id 中，
// 因此重复 ID 的候选不会互相覆盖。
//
// 注意：有序集合的分数是 float64，|score| > 2^53 时会丢失精度。
// 空 Result 等价于删除 key。
func SaveResult(ctx context.Context, kv core.KeyValueStore, key string, res core.Result) error {
	members := memberNames(res)
	scored := make([]core.ScoredMember, len(res))
	for i, c := range res {
		scored[i] = core.ScoredMember{Member: members[i], Score: float64(c.Score)}
	}
	if err := kv.ZReplace(ctx, key, scored); err != nil {
		return fmt.Errorf("%s: save %s: %w", kv.Name(), key, err)
	}

	pk, ik := PayloadKey(key), IDKey(key)
	for _, k := range []string{pk, ik} {
		if err := kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("%s: clear %s: %w", kv.Name(), k, err)
		}
	}
	for i, c := range res {
		if members[i] != c.ID {
			if err := kv.HSet(ctx, ik, members[i], []byte(c.ID)); err != nil {
				return fmt.Errorf("%s: save id %s/%s: %w", kv.Name(), ik, members[i], err)
			}
		}
		if c.Payload == "" {
			continue
		}
		if err := kv.HSet(ctx, pk, members[i], []byte(c.Payload)); err != nil {
			return fmt.Errorf("%s: save payload %s/%s: %w", kv.Name(), pk, members[i], err)
		}
	}
	return nil
}

// memberNames 为每个候选分配唯一的有序集合成员名。
// 首次出现的 ID 原样使用；生成的名字避开 Result 中任何真实 ID。
func memberNames(res core.Result) []string {
	ids := make(map[string]struct{}, len(res))
	for _, c := range res {
		ids[c.ID] = struct{}{}
	}
	used := make(map[string]struct{}, len(res))
	out := make([]string, len(res))
	for i, c := range res {
		name := c.ID
		if _, dup := used[name]; dup {
			for n := 2; ; n++ {
				name = c.ID + "#" + strconv.Itoa(n)
				_, isID := ids[name]
				_, taken := used[name]
				if !isID && !taken {
					break
				}
			}
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

// LoadResult 读取 SaveResult 保存的排行榜，并按 (score 降序, order) 重新排序。
// order 为 nil 时使用字典序；key 不存在返回 ErrNotFound。
func LoadResult(ctx context.Context, kv core.KeyValueStore, key string, order core.IDOrder) (core.Result, error) {
	if order == nil {
		order = core.Lexicographic
	}
	members, err := kv.ZRevRangeWithScores(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("%s: load %s: %w", kv.Name(), key, err)
	}
	if len(members) == 0 {
		return nil, ErrNotFound
	}
	payloads, err := kv.HGetAll(ctx, PayloadKey(key))
	if err != nil {
		return nil, fmt.Errorf("%s: load payload %s: %w", kv.Name(), key, err)
	}
	ids, err := kv.HGetAll(ctx, IDKey(key))
	if err != nil {
		return nil, fmt.Errorf("%s: load ids %s: %w", kv.Name(), key, err)
	}

	res := make(core.Result, len(members))
	for i, sm := range members {
		id := sm.Member
		if orig, ok := ids[sm.Member]; ok {
			id = string(orig)
		}
		res[i] = core.Candidate{
			Score:   int64(sm.Score),
			ID:      id,
			Payload: string(payloads[sm.Member]),
		}
	}
	slices.SortFunc(res, func(a, b core.Candidate) int {
		if c := core.Rank(order, a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.Payload, b.Payload)
	})
	return res, nil
}
