package topk

import (
	"cmp"
	"container/heap"
	"slices"

	"github.com/rushteam/topkit/core"
)

// BoundedTopSet 是容量为 K 的有序容器，始终保留目前见过的最好的 K 个候选。
//
// 内部是一个以"最差候选"为堆顶的最小堆：
//   - 排序：分数升序；同分时 IDOrder 靠后的标识更差；再同则按 Payload
//   - 堆顶永远是下一个被淘汰的元素
//   - 任意操作之后 Len() <= K
//
// 非并发安全；每个分区 / 每次合并独占一个实例。
type BoundedTopSet struct {
	k      int
	policy core.TiePolicy
	h      candidateHeap
}

// NewBoundedTopSet 创建空容器。k < 1 返回 core.ErrInvalidK。
func NewBoundedTopSet(k int, opts ...Option) (*BoundedTopSet, error) {
	if k < 1 {
		return nil, core.ErrInvalidK
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newBoundedTopSet(k, o), nil
}

func newBoundedTopSet(k int, o options) *BoundedTopSet {
	// 预分配上限为 K，但避免超大 K 时一次性申请过多内存
	capHint := min(k, 1024)
	return &BoundedTopSet{
		k:      k,
		policy: o.policy,
		h:      candidateHeap{order: o.order, items: make([]core.Candidate, 0, capHint)},
	}
}

// K 返回容量。
func (s *BoundedTopSet) K() int { return s.k }

// Len 返回当前元素个数。
func (s *BoundedTopSet) Len() int { return len(s.h.items) }

// Min 返回当前最差的候选（下一个被淘汰者）。
func (s *BoundedTopSet) Min() (core.Candidate, bool) {
	if len(s.h.items) == 0 {
		return core.Candidate{}, false
	}
	return s.h.items[0], true
}

// Offer 尝试放入候选，返回是否被接纳。
//   - 未满：无条件接纳
//   - 已满且分数高于当前最小值：淘汰最小值后接纳
//   - 已满且与最小值同分：TieKeepExisting 丢弃；TieByIdentifier 按全序比较，更好才替换
//   - 否则丢弃
func (s *BoundedTopSet) Offer(c core.Candidate) bool {
	if len(s.h.items) < s.k {
		heap.Push(&s.h, c)
		return true
	}
	if !s.beats(c, s.h.items[0]) {
		return false
	}
	s.h.items[0] = c
	heap.Fix(&s.h, 0)
	return true
}

func (s *BoundedTopSet) beats(c, worst core.Candidate) bool {
	if c.Score != worst.Score {
		return c.Score > worst.Score
	}
	return s.policy == core.TieByIdentifier && s.h.rank(c, worst) < 0
}

// Ascending 返回按"差到好"排序的副本（内部顺序）。
func (s *BoundedTopSet) Ascending() []core.Candidate {
	out := slices.Clone(s.h.items)
	slices.SortFunc(out, func(a, b core.Candidate) int { return s.h.rank(b, a) })
	return out
}

// Descending 返回按"好到差"排序的副本，即最终输出顺序。
func (s *BoundedTopSet) Descending() []core.Candidate {
	out := slices.Clone(s.h.items)
	slices.SortFunc(out, s.h.rank)
	return out
}

// candidateHeap 以最差候选为堆顶。
type candidateHeap struct {
	order core.IDOrder
	items []core.Candidate
}

// rank 是候选上的全序：a 更好返回负数。
func (h *candidateHeap) rank(a, b core.Candidate) int {
	if c := core.Rank(h.order, a, b); c != 0 {
		return c
	}
	return cmp.Compare(a.Payload, b.Payload)
}

func (h *candidateHeap) Len() int           { return len(h.items) }
func (h *candidateHeap) Less(i, j int) bool { return h.rank(h.items[i], h.items[j]) > 0 }
func (h *candidateHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *candidateHeap) Push(x any) {
	h.items = append(h.items, x.(core.Candidate))
}

func (h *candidateHeap) Pop() any {
	n := len(h.items)
	it := h.items[n-1]
	h.items = h.items[:n-1]
	return it
}
