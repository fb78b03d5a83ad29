package topk

import (
	"github.com/rushteam/topkit/core"
)

// Stats 记录一个 Selector 的处理计数。
type Stats struct {
	Lines     int // Process 调用次数
	Malformed int // 解析失败被丢弃的行
	Filtered  int // 被 Filter 拒绝（或 Filter 求值出错）的记录
	Offered   int // 进入 Offer 的候选
	Accepted  int // 被容器接纳过的候选（含之后又被淘汰的）
}

// Selector 是分区选择器：消费一个分区的原始行，维护该分区最好的 K 个候选。
//
// 生命周期只有两个状态：Accepting → Closed。
// Finalize 之后再调用 Process / Offer 返回 core.ErrClosed；
// 重复调用 Finalize 返回同一份缓存结果。
//
// Selector 不做 I/O，非并发安全，且不在分区之间共享。
type Selector struct {
	opts   options
	set    *BoundedTopSet
	stats  Stats
	closed bool
	out    []core.Candidate
}

// NewSelector 创建分区选择器。k < 1 返回 core.ErrInvalidK。
// 只调用 Offer 时可以不设置 Parser；调用 Process 时 Parser 为空则所有行视为格式错误。
func NewSelector(k int, opts ...Option) (*Selector, error) {
	if k < 1 {
		return nil, core.ErrInvalidK
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Selector{opts: o, set: newBoundedTopSet(k, o)}, nil
}

// Process 解析一行原始输入并尝试放入容器。
// 格式错误或被过滤的行静默丢弃（只计数），返回 nil；只有已关闭时返回错误。
func (s *Selector) Process(line string) error {
	if s.closed {
		return core.ErrClosed
	}
	s.stats.Lines++
	if s.opts.parser == nil {
		s.stats.Malformed++
		return nil
	}
	rec, err := s.opts.parser.Parse(line)
	if err != nil {
		s.stats.Malformed++
		return nil
	}
	if s.opts.filter != nil {
		ok, err := s.opts.filter.Match(rec)
		if err != nil || !ok {
			s.stats.Filtered++
			return nil
		}
	}
	return s.Offer(core.NewCandidate(rec, s.opts.keepPayload))
}

// Offer 直接放入一个候选（已解析的输入）。
func (s *Selector) Offer(c core.Candidate) error {
	if s.closed {
		return core.ErrClosed
	}
	s.stats.Offered++
	if s.set.Offer(c) {
		s.stats.Accepted++
	}
	return nil
}

// Len 返回当前保留的候选数（<= K）。
func (s *Selector) Len() int {
	if s.closed {
		return len(s.out)
	}
	return s.set.Len()
}

// Stats 返回处理计数。
func (s *Selector) Stats() Stats { return s.stats }

// Finalize 关闭选择器并返回本分区保留的候选（<= K 个）。
// 返回顺序为容器内部的升序（最差在前）；下游 Merger 会重新排序。
// 重复调用返回同一份结果的副本。
func (s *Selector) Finalize() []core.Candidate {
	if !s.closed {
		s.out = s.set.Ascending()
		s.set = nil
		s.closed = true
	}
	out := make([]core.Candidate, len(s.out))
	copy(out, s.out)
	return out
}
