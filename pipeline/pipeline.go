// Package pipeline 是 Top-K 作业的进程内运行时：
//
//	Partition × N ──(ants 池, 每分区一个 Selector)──▶ <=K 列表 × N
//	            ──(errgroup, 按扇入分组部分合并, 多轮)──▶ <=K 列表 × M
//	            ──(单个 Merger)──▶ Result ──▶ Sink
//
// 并发只在本层管理；topk 包中的组件都是同步的。最终合并永远只有一个实例，
// 保证唯一且权威的全局顺序。任一分区失败会取消整个作业，部分状态直接丢弃。
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/topkit/core"
	"github.com/rushteam/topkit/log"
	"github.com/rushteam/topkit/store"
	"github.com/rushteam/topkit/topk"
)

// Kind 标记运行阶段，用于日志与报告。
type Kind string

const (
	KindSelect  Kind = "select"  // 分区选择
	KindCombine Kind = "combine" // 部分合并
	KindMerge   Kind = "merge"   // 最终合并
)

// Runner 执行一次 Top-K 作业。字段在 Run 期间只读，Runner 可重复使用。
type Runner struct {
	K           int
	Parser      core.Parser
	Filter      core.Filter    // 可选
	Order       core.IDOrder   // 默认字典序
	TiePolicy   core.TiePolicy // 分区内边界同分策略
	KeepPayload bool

	// Concurrency 同时运行的 Selector 数，<=0 时取 runtime.NumCPU()。
	Concurrency int
	// CombineFanIn 部分合并的扇入；<2 时所有分区结果直接进入最终合并。
	CombineFanIn int

	// Sink 可选；最终合并完成后写入一次。
	Sink store.Sink
}

// Report 是一次运行的结果与统计。
type Report struct {
	RunID         string
	Partitions    int
	Stats         topk.Stats // 所有分区的计数之和
	CombineRounds int
	Result        core.Result
	Elapsed       time.Duration
}

func (r *Runner) options() []topk.Option {
	return []topk.Option{
		topk.WithIDOrder(r.Order),
		topk.WithTiePolicy(r.TiePolicy),
		topk.WithParser(r.Parser),
		topk.WithFilter(r.Filter),
		topk.WithKeepPayload(r.KeepPayload),
	}
}

func (r *Runner) sanity() error {
	if r.K < 1 {
		return core.ErrInvalidK
	}
	if r.Parser == nil {
		return core.NewDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput, "pipeline: parser is required")
	}
	return nil
}

// Run 在给定分区上执行完整作业并返回报告。
func (r *Runner) Run(ctx context.Context, parts []Partition) (*Report, error) {
	if err := r.sanity(); err != nil {
		return nil, fmt.Errorf("sanity: %w", err)
	}
	start := time.Now()
	rep := &Report{RunID: uuid.NewString(), Partitions: len(parts)}
	log.Infof("[%s] run start: k=%d partitions=%d tie=%s parser=%s",
		rep.RunID, r.K, len(parts), r.TiePolicy, r.Parser.Name())

	lists, stats, err := r.selectAll(ctx, rep.RunID, parts)
	if err != nil {
		return nil, err
	}
	rep.Stats = stats

	lists, rep.CombineRounds, err = r.combine(ctx, rep.RunID, lists)
	if err != nil {
		return nil, err
	}

	res, err := topk.Merge(r.K, lists, r.options()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindMerge, err)
	}
	rep.Result = res
	log.Infof("[%s] %s: %d lists -> %d results", rep.RunID, KindMerge, len(lists), len(res))

	if r.Sink != nil {
		if err := r.Sink.Write(ctx, res); err != nil {
			return nil, fmt.Errorf("sink %s: %w", r.Sink.Name(), err)
		}
	}
	rep.Elapsed = time.Since(start)
	log.Infof("[%s] run done in %s: lines=%d malformed=%d filtered=%d",
		rep.RunID, rep.Elapsed, stats.Lines, stats.Malformed, stats.Filtered)
	return rep, nil
}

type selectTask struct {
	ctx    context.Context
	runID  string
	part   Partition
	idx    int
	runner *Runner
	lists  [][]core.Candidate
	stats  []topk.Stats
	errs   []error
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

func (r *Runner) concurrency(n int) int {
	c := r.Concurrency
	if c <= 0 {
		c = runtime.NumCPU()
	}
	return max(min(c, n), 1)
}

// selectAll 在 ants 池上为每个分区运行一个 Selector。
func (r *Runner) selectAll(ctx context.Context, runID string, parts []Partition) ([][]core.Candidate, topk.Stats, error) {
	var total topk.Stats
	if len(parts) == 0 {
		return nil, total, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := ants.NewPoolWithFunc(r.concurrency(len(parts)), func(arg any) {
		t, ok := arg.(*selectTask)
		if !ok {
			panic("select pool args type error")
		}
		defer t.wg.Done()
		list, st, err := t.runner.selectPartition(t.ctx, t.part)
		t.stats[t.idx] = st
		if err != nil {
			t.errs[t.idx] = fmt.Errorf("%s %s: %w", KindSelect, t.part.Name(), err)
			t.cancel()
			return
		}
		t.lists[t.idx] = list
		log.Debugf("[%s] %s %s: lines=%d kept=%d", t.runID, KindSelect, t.part.Name(), st.Lines, len(list))
	})
	if err != nil {
		return nil, total, fmt.Errorf("create select pool: %w", err)
	}
	defer pool.Release()

	var (
		wg    sync.WaitGroup
		lists = make([][]core.Candidate, len(parts))
		stats = make([]topk.Stats, len(parts))
		errs  = make([]error, len(parts))
	)
	for i, p := range parts {
		wg.Add(1)
		task := &selectTask{
			ctx: ctx, runID: runID, part: p, idx: i, runner: r,
			lists: lists, stats: stats, errs: errs, cancel: cancel, wg: &wg,
		}
		if err := pool.Invoke(task); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("%s %s: submit: %w", KindSelect, p.Name(), err)
			cancel()
			break
		}
	}
	wg.Wait()

	for _, st := range stats {
		total.Lines += st.Lines
		total.Malformed += st.Malformed
		total.Filtered += st.Filtered
		total.Offered += st.Offered
		total.Accepted += st.Accepted
	}
	if err := firstError(errs); err != nil {
		return nil, total, err
	}
	return lists, total, nil
}

// firstError 优先返回非取消类错误，避免被连带取消的分区掩盖真正的失败原因。
func firstError(errs []error) error {
	var canceled error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) {
			if canceled == nil {
				canceled = err
			}
			continue
		}
		return err
	}
	return canceled
}

// checkEvery 控制读取分区时检查取消的频率（行数）。
const checkEvery = 1024

// selectPartition 读取一个分区的全部行并返回 Selector 的结果。
// 出错时 Selector 的部分状态直接丢弃。
func (r *Runner) selectPartition(ctx context.Context, p Partition) ([]core.Candidate, topk.Stats, error) {
	sel, err := topk.NewSelector(r.K, r.options()...)
	if err != nil {
		return nil, topk.Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, topk.Stats{}, err
	}
	rc, err := p.Open(ctx)
	if err != nil {
		return nil, topk.Stats{}, fmt.Errorf("open: %w", err)
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, 64*1024)
	for n := 0; ; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, sel.Stats(), err
			}
		}
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, sel.Stats(), fmt.Errorf("read: %w", readErr)
		}
		if len(line) > 0 {
			if err := sel.Process(strings.TrimRight(line, "\r\n")); err != nil {
				return nil, sel.Stats(), err
			}
		}
		if readErr == io.EOF {
			break
		}
	}
	return sel.Finalize(), sel.Stats(), nil
}

// combine 按 CombineFanIn 分组做多轮部分合并，直到列表数不超过扇入。
// 同一轮内各组并发合并，任一组失败即取消整轮。
func (r *Runner) combine(ctx context.Context, runID string, lists [][]core.Candidate) ([][]core.Candidate, int, error) {
	fanIn := r.CombineFanIn
	if fanIn < 2 {
		return lists, 0, nil
	}
	rounds := 0
	for len(lists) > fanIn {
		groups := (len(lists) + fanIn - 1) / fanIn
		next := make([][]core.Candidate, groups)

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(r.concurrency(groups))
		for g := 0; g < groups; g++ {
			g := g // 按迭代捕获循环变量（go 1.21 语义下必需）
			lo, hi := g*fanIn, min((g+1)*fanIn, len(lists))
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				res, err := topk.Merge(r.K, lists[lo:hi], r.options()...)
				if err != nil {
					return err
				}
				next[g] = res
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, rounds, fmt.Errorf("%s round %d: %w", KindCombine, rounds+1, err)
		}
		rounds++
		log.Debugf("[%s] %s round %d: %d -> %d lists", runID, KindCombine, rounds, len(lists), groups)
		lists = next
	}
	return lists, rounds, nil
}
