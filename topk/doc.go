// Package topk 实现分布式 Top-K 选择的核心：有界容器、分区选择器与全局合并器。
//
// 数据流：
//
//	原始行 → Selector（每个分区一个，互不共享状态）→ 每分区 <= K 个候选
//	       → Merger（可多轮部分合并，最后一轮只有一个实例）→ 全局 Top-K（降序）
//
// 所有操作都是同步、纯 CPU 的，耗时与 K 成正比而与原始数据量无关；
// 本包不做任何 I/O，也不打日志。
package topk
