package parser

import (
	"strconv"
	"strings"

	"github.com/rushteam/topkit/core"
)

// TSV 解析按分隔符切分的文本行，例如：
//
//	id\tscore\t...
//
// 以 '#' 开头的行与列数不足的行视为格式错误。
// Attrs 以列下标（"0"、"1"...）为 key 保存全部列；若设置了 Header，则同时以列名为 key。
type TSV struct {
	Separator   string   // 默认 "\t"
	IDColumn    int      // 标识所在列，默认 0
	ScoreColumn int      // 分数所在列，默认 1
	Header      []string // 可选列名
}

// NewTSV 返回 id\tscore 格式的 TSV 解析器。
func NewTSV() *TSV {
	return &TSV{Separator: "\t", IDColumn: 0, ScoreColumn: 1}
}

func (p *TSV) Name() string { return "tsv" }

func (p *TSV) Parse(line string) (core.Record, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || strings.HasPrefix(line, "#") {
		return core.Record{}, core.ErrMalformedRecord
	}
	sep := p.Separator
	if sep == "" {
		sep = "\t"
	}
	cols := strings.Split(line, sep)
	if p.IDColumn < 0 || p.ScoreColumn < 0 || len(cols) <= max(p.IDColumn, p.ScoreColumn) {
		return core.Record{}, core.ErrMalformedRecord
	}

	attrs := make(map[string]string, len(cols)*2)
	for i, c := range cols {
		attrs[strconv.Itoa(i)] = c
		if i < len(p.Header) && p.Header[i] != "" {
			attrs[p.Header[i]] = c
		}
	}
	return buildRecord(attrs, strconv.Itoa(p.IDColumn), strconv.Itoa(p.ScoreColumn), line)
}

var _ core.Parser = (*TSV)(nil)
