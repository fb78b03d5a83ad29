package filter

import "github.com/rushteam/topkit/core"

// BlacklistFilter 排除指定标识的记录，例如 StackOverflow 数据中的系统账号 "-1"。
type BlacklistFilter struct {
	ids map[string]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(ids []string) *BlacklistFilter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &BlacklistFilter{ids: set}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) Match(r core.Record) (bool, error) {
	_, blocked := f.ids[r.ID]
	return !blocked, nil
}

var _ core.Filter = (*BlacklistFilter)(nil)
