package topk

import (
	"github.com/rushteam/topkit/core"
)

// Merger 是全局合并器：把若干 <= K 的候选列表合并为全局 Top-K（降序）。
//
// 候选按输入顺序逐个 Offer，但 Merger 固定使用 TieByIdentifier：
// 在 (score 降序, IDOrder, Payload) 全序下，有界容器最终保留的就是并集的 Top-K，
// 与输入列表的顺序、分组无关，因此既可以作为部分合并（combiner）多轮使用，也可以作为最终合并：
//
//	Merge(Merge(A, B), C) == Merge(A, Merge(B, C)) == Merge(A, B, C)
//
// 输入列表只读，不会被修改。Result 之后再 Add 返回 core.ErrMergerClosed；
// 重复调用 Result 返回同一份缓存结果。
type Merger struct {
	set    *BoundedTopSet
	closed bool
	result core.Result
}

// NewMerger 创建一次合并使用的 Merger。k < 1 返回 core.ErrInvalidK。
func NewMerger(k int, opts ...Option) (*Merger, error) {
	if k < 1 {
		return nil, core.ErrInvalidK
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.policy = core.TieByIdentifier
	return &Merger{set: newBoundedTopSet(k, o)}, nil
}

// Add 并入一个候选列表（来自 Selector 或更早的部分合并）。
func (m *Merger) Add(list []core.Candidate) error {
	if m.closed {
		return core.ErrMergerClosed
	}
	for _, c := range list {
		m.set.Offer(c)
	}
	return nil
}

// Result 关闭合并器并按降序返回结果；不足 K 个时原样返回全部，不做填充。
func (m *Merger) Result() core.Result {
	if !m.closed {
		m.result = m.set.Descending()
		m.set = nil
		m.closed = true
	}
	out := make(core.Result, len(m.result))
	copy(out, m.result)
	return out
}

// Merge 是一次性合并的便捷函数。
func Merge(k int, lists [][]core.Candidate, opts ...Option) (core.Result, error) {
	m, err := NewMerger(k, opts...)
	if err != nil {
		return nil, err
	}
	for _, l := range lists {
		if err := m.Add(l); err != nil {
			return nil, err
		}
	}
	return m.Result(), nil
}
