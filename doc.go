// Package topkit 是一个分布式 Top-K 选择工具包。
//
// 设计要点：
// - Partition-first: 每个分区独立运行一个 Selector，只保留本分区最好的 K 条候选
// - Merge-once: 分区结果（可选地经过部分合并）最终只由一个 Merger 汇总为全局 Top-K
// - 确定性: 合并阶段按 (分数降序, 标识) 全序比较，结果与分区方式、合并顺序无关
package topkit

import (
	"github.com/rushteam/topkit/core"
	"github.com/rushteam/topkit/pipeline"
	"github.com/rushteam/topkit/topk"
)

// 轻量 facade：便于用户直接 import "topkit" 使用核心抽象。
type Candidate = core.Candidate
type Result = core.Result
type Selector = topk.Selector
type Merger = topk.Merger
type BoundedTopSet = topk.BoundedTopSet
type Runner = pipeline.Runner

const (
	TieKeepExisting = core.TieKeepExisting
	TieByIdentifier = core.TieByIdentifier
)

var (
	NewSelector      = topk.NewSelector
	NewMerger        = topk.NewMerger
	NewBoundedTopSet = topk.NewBoundedTopSet
	Merge            = topk.Merge
)
