package config

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/topkit/core"
	"github.com/rushteam/topkit/parser"
	"github.com/rushteam/topkit/pipeline"
)

func TestSupportedTypes(t *testing.T) {
	assert.Equal(t, []string{"jsonl", "tsv", "xmlrow"}, SupportedParsers())
	assert.Subset(t, SupportedSinks(), []string{"redis", "stdout"})
}

func TestValidateJobConfig(t *testing.T) {
	ok := pipeline.Config{Job: pipeline.JobConfig{K: 3, Parser: pipeline.ComponentConfig{Type: "tsv"}}}
	require.NoError(t, ValidateJobConfig(&ok))

	tests := []struct {
		name   string
		mutate func(*pipeline.JobConfig)
	}{
		{name: "zero k", mutate: func(j *pipeline.JobConfig) { j.K = 0 }},
		{name: "unknown parser", mutate: func(j *pipeline.JobConfig) { j.Parser.Type = "csv" }},
		{name: "unknown sink", mutate: func(j *pipeline.JobConfig) { j.Sinks = []pipeline.ComponentConfig{{Type: "kafka"}} }},
		{name: "unknown tie policy", mutate: func(j *pipeline.JobConfig) { j.TiePolicy = "random" }},
		{name: "unknown tie order", mutate: func(j *pipeline.JobConfig) { j.TieOrder = "length" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ok
			tt.mutate(&cfg.Job)
			err := ValidateJobConfig(&cfg)
			require.Error(t, err)
			assert.True(t, core.IsInvalidInput(err), "err = %v", err)
		})
	}
	assert.Error(t, ValidateJobConfig(nil))
}

func TestBuildParser(t *testing.T) {
	p, err := BuildParser(pipeline.ComponentConfig{
		Type:   "xmlrow",
		Config: map[string]any{"id_field": "PostId", "score_field": "Score", "element": ""},
	})
	require.NoError(t, err)
	x, ok := p.(*parser.XMLRow)
	require.True(t, ok)
	assert.Equal(t, &parser.XMLRow{IDAttr: "PostId", ScoreAttr: "Score"}, x)

	p, err = BuildParser(pipeline.ComponentConfig{
		Type:   "tsv",
		Config: map[string]any{"separator": ",", "id_column": 2, "score_column": 0.0, "header": []any{"s", "n", "id"}},
	})
	require.NoError(t, err)
	assert.Equal(t, &parser.TSV{Separator: ",", IDColumn: 2, ScoreColumn: 0, Header: []string{"s", "n", "id"}}, p)

	_, err = BuildParser(pipeline.ComponentConfig{Type: "tsv", Config: map[string]any{"id_column": -1}})
	assert.True(t, core.IsInvalidInput(err))

	p, err = BuildParser(pipeline.ComponentConfig{Type: "jsonl", Config: map[string]any{"id_field": "user.id"}})
	require.NoError(t, err)
	assert.Equal(t, &parser.JSONL{IDPath: "user.id", ScorePath: "score"}, p)
}

func TestBuildRunner_EndToEnd(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	var out bytes.Buffer
	cfg := &pipeline.Config{Job: pipeline.JobConfig{
		K:         2,
		TiePolicy: "identifier",
		TieOrder:  "numeric",
		Parser:    pipeline.ComponentConfig{Type: "xmlrow"},
		Filter:    `attrs.Location == "Sweden"`,
		Blacklist: []string{"-1"},
		Sinks: []pipeline.ComponentConfig{
			{Type: "stdout"},
			{Type: "redis", Config: map[string]any{"addr": mr.Addr(), "key": "topk:users"}},
		},
	}}
	r, err := BuildRunner(cfg, Env{Stdout: &out})
	require.NoError(t, err)
	defer func() { assert.NoError(t, CloseSink(r.Sink)) }()

	rep, err := r.Run(context.Background(), []pipeline.Partition{
		pipeline.LinesPartition{ID: "a", Lines: []string{
			`<row Id="-1" Reputation="999" Location="Sweden" />`,
			`<row Id="10" Reputation="50" Location="Sweden" />`,
			`<row Id="11" Reputation="70" Location="Norway" />`,
		}},
		pipeline.LinesPartition{ID: "b", Lines: []string{
			`<row Id="9" Reputation="50" Location="Sweden" />`,
			`<row Id="12" Reputation="20" />`,
		}},
	})
	require.NoError(t, err)
	// 同分 50：按数值顺序 9 排在 10 前面
	assert.Equal(t, []string{"9", "10"}, rep.Result.IDs())
	assert.Equal(t, "50\t9\n50\t10\n", out.String())
	assert.Equal(t, 3, rep.Stats.Filtered)

	members, err := mr.ZMembers("topk:users")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"9", "10"}, members)
}

func TestBuildRunner_BadFilter(t *testing.T) {
	cfg := &pipeline.Config{Job: pipeline.JobConfig{
		K:      1,
		Parser: pipeline.ComponentConfig{Type: "tsv"},
		Filter: "score +",
	}}
	_, err := BuildRunner(cfg, Env{})
	assert.True(t, core.IsInvalidInput(err))
}

func TestBuildRunner_RedisUnavailable(t *testing.T) {
	cfg := &pipeline.Config{Job: pipeline.JobConfig{
		K:      1,
		Parser: pipeline.ComponentConfig{Type: "tsv"},
		Sinks:  []pipeline.ComponentConfig{{Type: "redis", Config: map[string]any{"addr": "127.0.0.1:1", "key": "k"}}},
	}}
	_, err := BuildRunner(cfg, Env{})
	assert.Error(t, err)
}
