package config

import (
	"fmt"
	"io"
	"os"

	"github.com/rushteam/topkit/core"
	"github.com/rushteam/topkit/filter"
	"github.com/rushteam/topkit/parser"
	"github.com/rushteam/topkit/pipeline"
	"github.com/rushteam/topkit/pkg/conv"
	"github.com/rushteam/topkit/store"
)

func init() {
	RegisterParser("xmlrow", buildXMLRowParser)
	RegisterParser("tsv", buildTSVParser)
	RegisterParser("jsonl", buildJSONLParser)

	RegisterSink("stdout", buildStdoutSink)
	RegisterSink("redis", buildRedisSink)
}

func buildXMLRowParser(cfg map[string]any) (core.Parser, error) {
	p := parser.NewXMLRow()
	p.Element = conv.ConfigGet(cfg, "element", p.Element)
	p.IDAttr = conv.ConfigGet(cfg, "id_field", p.IDAttr)
	p.ScoreAttr = conv.ConfigGet(cfg, "score_field", p.ScoreAttr)
	return p, nil
}

func buildTSVParser(cfg map[string]any) (core.Parser, error) {
	p := parser.NewTSV()
	p.Separator = conv.ConfigGet(cfg, "separator", p.Separator)
	p.IDColumn = conv.ConfigGetInt(cfg, "id_column", p.IDColumn)
	p.ScoreColumn = conv.ConfigGetInt(cfg, "score_column", p.ScoreColumn)
	p.Header = conv.ConfigGetStrings(cfg, "header")
	if p.IDColumn < 0 || p.ScoreColumn < 0 {
		return nil, invalid("tsv: negative column index")
	}
	return p, nil
}

func buildJSONLParser(cfg map[string]any) (core.Parser, error) {
	p := parser.NewJSONL()
	p.IDPath = conv.ConfigGet(cfg, "id_field", p.IDPath)
	p.ScorePath = conv.ConfigGet(cfg, "score_field", p.ScorePath)
	return p, nil
}

func buildStdoutSink(cfg map[string]any, env Env) (store.Sink, error) {
	w := env.Stdout
	if w == nil {
		w = os.Stdout
	}
	format := conv.ConfigGet(cfg, "format", store.FormatText)
	if format != store.FormatText && format != store.FormatJSON {
		return nil, invalid("stdout: unknown format %q", format)
	}
	return &store.WriterSink{W: w, Format: format}, nil
}

func buildRedisSink(cfg map[string]any, _ Env) (store.Sink, error) {
	addr := conv.ConfigGet(cfg, "addr", "localhost:6379")
	key := conv.ConfigGet(cfg, "key", "")
	if key == "" {
		return nil, invalid("redis: key is required")
	}
	rs, err := store.NewRedisStore(addr, conv.ConfigGetInt(cfg, "db", 0))
	if err != nil {
		return nil, err
	}
	return &store.StoreSink{Store: rs, Key: key}, nil
}

// BuildRunner 校验配置并构建 Runner。
// 返回的 Runner.Sink 若持有连接（例如 Redis），调用方负责通过 io.Closer 关闭。
func BuildRunner(cfg *pipeline.Config, env Env) (*pipeline.Runner, error) {
	if err := ValidateJobConfig(cfg); err != nil {
		return nil, err
	}
	job := cfg.Job

	policy, _ := core.ParseTiePolicy(job.TiePolicy)
	order, _ := core.ParseIDOrder(job.TieOrder)

	p, err := BuildParser(job.Parser)
	if err != nil {
		return nil, fmt.Errorf("build parser %s: %w", job.Parser.Type, err)
	}

	var celFilter core.Filter
	if job.Filter != "" {
		f, err := filter.NewCELFilter(job.Filter)
		if err != nil {
			return nil, err
		}
		celFilter = f
	}
	var blacklist core.Filter
	if len(job.Blacklist) > 0 {
		blacklist = filter.NewBlacklistFilter(job.Blacklist)
	}

	built := make(store.MultiSink, 0, len(job.Sinks))
	for _, sc := range job.Sinks {
		s, err := BuildSink(sc, env)
		if err != nil {
			_ = built.Close()
			return nil, fmt.Errorf("build sink %s: %w", sc.Type, err)
		}
		built = append(built, s)
	}

	r := &pipeline.Runner{
		K:            job.K,
		Parser:       p,
		Filter:       filter.Combine(blacklist, celFilter),
		Order:        order,
		TiePolicy:    policy,
		KeepPayload:  job.KeepPayload,
		Concurrency:  job.Concurrency,
		CombineFanIn: job.CombineFanIn,
	}
	switch len(built) {
	case 0:
	case 1:
		r.Sink = built[0]
	default:
		r.Sink = built
	}
	return r, nil
}

// CloseSink 关闭 Runner.Sink 持有的资源（若有）。
func CloseSink(s store.Sink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

