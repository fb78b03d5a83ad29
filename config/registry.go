// Package config 根据作业配置构建 pipeline.Runner。
//
// Parser 与 Sink 通过注册表驱动：内置类型在 init 中注册，
// 自定义类型在 main 中调用 RegisterParser / RegisterSink 即可被配置使用。
package config

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/rushteam/topkit/core"
	"github.com/rushteam/topkit/pipeline"
	"github.com/rushteam/topkit/store"
)

// ParserBuilder 根据组件配置构建 Parser。
type ParserBuilder func(cfg map[string]any) (core.Parser, error)

// SinkBuilder 根据组件配置构建 Sink。
type SinkBuilder func(cfg map[string]any, env Env) (store.Sink, error)

// Env 是构建 Sink 时可用的外部资源。
type Env struct {
	Stdout io.Writer
}

var (
	registryMu sync.RWMutex
	parsers    = make(map[string]ParserBuilder)
	sinks      = make(map[string]SinkBuilder)
)

// RegisterParser 注册一种 Parser 的构建逻辑；同名覆盖。
func RegisterParser(typeName string, builder ParserBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	parsers[typeName] = builder
}

// RegisterSink 注册一种 Sink 的构建逻辑；同名覆盖。
func RegisterSink(typeName string, builder SinkBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	sinks[typeName] = builder
}

// SupportedParsers 返回已注册的 Parser 类型（排序），用于错误提示。
func SupportedParsers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedKeys(parsers)
}

// SupportedSinks 返回已注册的 Sink 类型（排序）。
func SupportedSinks() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedKeys(sinks)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BuildParser 按类型构建 Parser。
func BuildParser(cc pipeline.ComponentConfig) (core.Parser, error) {
	registryMu.RLock()
	b, ok := parsers[cc.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, invalid("unsupported parser type %q (supported: %v)", cc.Type, SupportedParsers())
	}
	return b(cc.Config)
}

// BuildSink 按类型构建 Sink。
func BuildSink(cc pipeline.ComponentConfig, env Env) (store.Sink, error) {
	registryMu.RLock()
	b, ok := sinks[cc.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, invalid("unsupported sink type %q (supported: %v)", cc.Type, SupportedSinks())
	}
	return b(cc.Config, env)
}

// ValidateJobConfig 校验 K 与组件类型，不创建任何连接。
func ValidateJobConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return invalid("nil config")
	}
	job := cfg.Job
	if job.K < 1 {
		return core.ErrInvalidK
	}
	if _, err := core.ParseTiePolicy(job.TiePolicy); err != nil {
		return err
	}
	if _, err := core.ParseIDOrder(job.TieOrder); err != nil {
		return err
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	if _, ok := parsers[job.Parser.Type]; !ok {
		return invalid("unsupported parser type %q (supported: %v)", job.Parser.Type, sortedKeys(parsers))
	}
	for _, sc := range job.Sinks {
		if _, ok := sinks[sc.Type]; !ok {
			return invalid("unsupported sink type %q (supported: %v)", sc.Type, sortedKeys(sinks))
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, fmt.Sprintf(format, args...))
}
