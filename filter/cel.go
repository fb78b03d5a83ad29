package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/topkit/core"
)

// CELFilter 使用 CEL (Common Expression Language) 表达式过滤记录。
// 表达式在构造时编译一次，Match 只做求值；cel.Program 并发安全。
//
// 可用变量：
//   - id:     string，记录标识
//   - score:  int，记录分数
//   - attrs:  map(string, string)，解析出的全部字段
//   - record: 以上三者组成的 map，便于写 record.attrs.Location 之类的表达式
//
// 示例：
//   - `score >= 1000`
//   - `attrs.Location == "Sweden" && score > 10`
//   - `"WebsiteUrl" in attrs && int(attrs.UpVotes) > 100`
//
// 访问不存在的 key 会求值出错，出错的记录按不匹配处理；
// 请先用 `"key" in attrs` 或 has(attrs.key) 检查存在性。
type CELFilter struct {
	expr string
	prg  cel.Program
}

func newCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("score", cel.IntType),
		cel.Variable("attrs", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("record", cel.DynType),
	)
}

// NewCELFilter 编译表达式；表达式必须返回 bool。
func NewCELFilter(expr string) (*CELFilter, error) {
	env, err := newCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
			fmt.Sprintf("compile filter %q: %v", expr, issues.Err()))
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
			fmt.Sprintf("filter %q must return bool, got %v", expr, ast.OutputType()))
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program filter %q: %w", expr, err)
	}
	return &CELFilter{expr: expr, prg: prg}, nil
}

func (f *CELFilter) Name() string { return "filter.cel" }

// Expr 返回原始表达式。
func (f *CELFilter) Expr() string { return f.expr }

func (f *CELFilter) Match(r core.Record) (bool, error) {
	attrs := r.Attrs
	if attrs == nil {
		attrs = map[string]string{}
	}
	out, _, err := f.prg.Eval(map[string]any{
		"id":    r.ID,
		"score": r.Score,
		"attrs": attrs,
		"record": map[string]any{
			"id":    r.ID,
			"score": r.Score,
			"attrs": attrs,
		},
	})
	if err != nil {
		return false, fmt.Errorf("eval filter: %w", err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("filter must return boolean, got %T", out.Value())
	}
	return ok, nil
}

var _ core.Filter = (*CELFilter)(nil)
