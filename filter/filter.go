// Package filter 提供记录级过滤器：在记录进入分区选择器之前决定是否参与排名。
// 所有实现都满足 core.Filter，并且可以被多个分区并发调用。
package filter

import (
	"strings"

	"github.com/rushteam/topkit/core"
)

// Chain 组合多个过滤器：全部匹配才保留；任一过滤器出错即返回该错误。
type Chain []core.Filter

func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, f := range c {
		names = append(names, f.Name())
	}
	return "filter.chain(" + strings.Join(names, ",") + ")"
}

func (c Chain) Match(r core.Record) (bool, error) {
	for _, f := range c {
		ok, err := f.Match(r)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Combine 返回 filters 的组合；忽略 nil，只有一个时直接返回它，没有时返回 nil。
func Combine(filters ...core.Filter) core.Filter {
	out := make(Chain, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

var _ core.Filter = Chain(nil)
