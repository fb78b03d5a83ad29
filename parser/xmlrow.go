package parser

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/rushteam/topkit/core"
)

// XMLRow 解析 StackOverflow 数据转储风格的单行 XML 记录：
//
//	<row Id="-1" Reputation="1" CreationDate="2008-07-31T00:00:00.000" DisplayName="Community" ... />
//
// 文件头尾（<?xml ...?>、<users>、</users>）以及缺少 ID / 分数属性的行都视为格式错误。
// 全部属性保存在 Record.Attrs 中，供过滤表达式使用。
type XMLRow struct {
	// Element 要求的元素名，默认 "row"；为空字符串时接受任意元素名。
	Element string
	// IDAttr 作为标识的属性名，默认 "Id"。
	IDAttr string
	// ScoreAttr 作为分数的属性名，默认 "Reputation"。
	ScoreAttr string
}

// NewXMLRow 返回默认配置（row / Id / Reputation）的 XMLRow。
func NewXMLRow() *XMLRow {
	return &XMLRow{Element: "row", IDAttr: "Id", ScoreAttr: "Reputation"}
}

func (p *XMLRow) Name() string { return "xmlrow" }

type xmlElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
}

func (p *XMLRow) Parse(line string) (core.Record, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "<") || strings.HasPrefix(trimmed, "<?") || strings.HasPrefix(trimmed, "</") {
		return core.Record{}, core.ErrMalformedRecord
	}

	var el xmlElement
	if err := xml.Unmarshal([]byte(trimmed), &el); err != nil {
		return core.Record{}, fmt.Errorf("%w: %v", core.ErrMalformedRecord, err)
	}
	if p.Element != "" && el.XMLName.Local != p.Element {
		return core.Record{}, core.ErrMalformedRecord
	}

	attrs := make(map[string]string, len(el.Attrs))
	for _, a := range el.Attrs {
		attrs[a.Name.Local] = a.Value
	}
	return buildRecord(attrs, p.IDAttr, p.ScoreAttr, line)
}

// buildRecord 从字段表中取出 ID 与分数；两者缺一即视为格式错误。
func buildRecord(attrs map[string]string, idKey, scoreKey, raw string) (core.Record, error) {
	id, ok := attrs[idKey]
	if !ok || id == "" {
		return core.Record{}, fmt.Errorf("%w: missing %q", core.ErrMalformedRecord, idKey)
	}
	rawScore, ok := attrs[scoreKey]
	if !ok {
		return core.Record{}, fmt.Errorf("%w: missing %q", core.ErrMalformedRecord, scoreKey)
	}
	score, err := strconv.ParseInt(strings.TrimSpace(rawScore), 10, 64)
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: score %q", core.ErrMalformedRecord, rawScore)
	}
	return core.Record{ID: id, Score: score, Attrs: attrs, Raw: raw}, nil
}

var _ core.Parser = (*XMLRow)(nil)
