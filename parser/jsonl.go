package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/rushteam/topkit/core"
)

// JSONL 解析每行一个 JSON 对象的输入，ID 与分数通过 gjson 路径提取：
//
//	{"user": {"id": 42}, "stats": {"reputation": 1200}}
//	IDPath: "user.id"  ScorePath: "stats.reputation"
//
// 分数必须是整数（数字或数字字符串）；顶层标量字段保存到 Attrs。
type JSONL struct {
	IDPath    string // 默认 "id"
	ScorePath string // 默认 "score"
}

// NewJSONL 返回 {"id":..., "score":...} 格式的解析器。
func NewJSONL() *JSONL {
	return &JSONL{IDPath: "id", ScorePath: "score"}
}

func (p *JSONL) Name() string { return "jsonl" }

func (p *JSONL) Parse(line string) (core.Record, error) {
	if !gjson.Valid(line) {
		return core.Record{}, core.ErrMalformedRecord
	}
	doc := gjson.Parse(line)
	if !doc.IsObject() {
		return core.Record{}, core.ErrMalformedRecord
	}

	idRes := doc.Get(p.IDPath)
	if !idRes.Exists() || idRes.IsObject() || idRes.IsArray() || idRes.Type == gjson.Null {
		return core.Record{}, fmt.Errorf("%w: missing %q", core.ErrMalformedRecord, p.IDPath)
	}
	id := idRes.String()
	if id == "" {
		return core.Record{}, fmt.Errorf("%w: empty %q", core.ErrMalformedRecord, p.IDPath)
	}

	score, err := intValue(doc.Get(p.ScorePath))
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: %v", core.ErrMalformedRecord, err)
	}

	attrs := make(map[string]string)
	doc.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() && !value.IsArray() {
			attrs[key.String()] = value.String()
		}
		return true
	})
	return core.Record{ID: id, Score: score, Attrs: attrs, Raw: line}, nil
}

func intValue(r gjson.Result) (int64, error) {
	switch r.Type {
	case gjson.Number:
		v, err := strconv.ParseInt(r.Raw, 10, 64)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("score %s overflows int64", r.Raw)
		}
		// 1e3 / 12.0 之类的写法：只接受整数值
		f := r.Float()
		// float64(math.MaxInt64) 会舍入到 2^63，上界必须用 >= 2^63 判断
		if f != math.Trunc(f) || f >= 0x1p63 || f < -0x1p63 {
			return 0, fmt.Errorf("score %s is not an integer", r.Raw)
		}
		return int64(f), nil
	case gjson.String:
		return strconv.ParseInt(r.Str, 10, 64)
	default:
		return 0, fmt.Errorf("score missing or not numeric")
	}
}

var _ core.Parser = (*JSONL)(nil)
