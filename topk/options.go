package topk

import "github.com/rushteam/topkit/core"

type options struct {
	order       core.IDOrder
	policy      core.TiePolicy
	parser      core.Parser
	filter      core.Filter
	keepPayload bool
}

func defaultOptions() options {
	return options{
		order:  core.Lexicographic,
		policy: core.TieKeepExisting,
	}
}

// Option 配置 Selector / Merger / BoundedTopSet。
type Option func(*options)

// WithIDOrder 设置同分时的标识顺序，默认字典序。
func WithIDOrder(order core.IDOrder) Option {
	return func(o *options) {
		if order != nil {
			o.order = order
		}
	}
}

// WithTiePolicy 设置容器已满时同分候选的处理策略，默认 TieKeepExisting。
// Merger 忽略该选项，始终按 (score, identifier) 全序合并。
func WithTiePolicy(p core.TiePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithParser 设置 Selector 解析原始行使用的 Parser。
func WithParser(p core.Parser) Option {
	return func(o *options) {
		o.parser = p
	}
}

// WithFilter 设置解析后的记录过滤器，不匹配的记录被丢弃。
func WithFilter(f core.Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithKeepPayload 让候选携带原始行。
func WithKeepPayload(keep bool) Option {
	return func(o *options) {
		o.keepPayload = keep
	}
}
