package parser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/topkit/core"
)

func TestXMLRow_Parse(t *testing.T) {
	p := NewXMLRow()
	tests := []struct {
		name      string
		line      string
		wantID    string
		wantScore int64
		wantErr   bool
	}{
		{
			name:      "user row",
			line:      `  <row Id="-1" Reputation="1" CreationDate="2008-07-31T00:00:00.000" DisplayName="Community" />`,
			wantID:    "-1",
			wantScore: 1,
		},
		{
			name:      "escaped attribute",
			line:      `<row Id="2" Reputation="101" DisplayName="Geoff &amp; Dalgas" />`,
			wantID:    "2",
			wantScore: 101,
		},
		{name: "xml declaration", line: `<?xml version="1.0" encoding="utf-8"?>`, wantErr: true},
		{name: "open root", line: `<users>`, wantErr: true},
		{name: "close root", line: `</users>`, wantErr: true},
		{name: "missing id", line: `<row Reputation="5" />`, wantErr: true},
		{name: "missing score", line: `<row Id="5" />`, wantErr: true},
		{name: "non numeric score", line: `<row Id="5" Reputation="lots" />`, wantErr: true},
		{name: "other element", line: `<post Id="5" Reputation="1" />`, wantErr: true},
		{name: "truncated", line: `<row Id="5" Reputation="1"`, wantErr: true},
		{name: "empty", line: ``, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := p.Parse(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, core.IsParseError(err), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, rec.ID)
			assert.Equal(t, tt.wantScore, rec.Score)
			assert.Equal(t, tt.line, rec.Raw)
		})
	}
}

func TestXMLRow_CustomAttrs(t *testing.T) {
	p := &XMLRow{IDAttr: "PostId", ScoreAttr: "Score"}
	rec, err := p.Parse(`<comment PostId="77" Score="12" Text="nice" />`)
	require.NoError(t, err)
	assert.Equal(t, "77", rec.ID)
	assert.Equal(t, int64(12), rec.Score)
	assert.Equal(t, "nice", rec.Attrs["Text"])
}

func TestTSV_Parse(t *testing.T) {
	p := NewTSV()
	rec, err := p.Parse("alice\t42\textra")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.ID)
	assert.Equal(t, int64(42), rec.Score)
	assert.Equal(t, "extra", rec.Attrs["2"])

	for _, line := range []string{"", "# comment", "alice", "alice\tx"} {
		_, err := p.Parse(line)
		assert.True(t, core.IsParseError(err), "line %q", line)
	}
}

func TestTSV_CustomColumns(t *testing.T) {
	p := &TSV{Separator: ",", IDColumn: 2, ScoreColumn: 0, Header: []string{"score", "name", "id"}}
	rec, err := p.Parse("15,bob,u1\r\n")
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.ID)
	assert.Equal(t, int64(15), rec.Score)
	assert.Equal(t, "bob", rec.Attrs["name"])
}

func TestJSONL_Parse(t *testing.T) {
	p := NewJSONL()
	tests := []struct {
		name      string
		line      string
		wantID    string
		wantScore int64
		wantErr   bool
	}{
		{name: "plain", line: `{"id":"a","score":7,"country":"se"}`, wantID: "a", wantScore: 7},
		{name: "numeric id", line: `{"id":42,"score":-3}`, wantID: "42", wantScore: -3},
		{name: "string score", line: `{"id":"a","score":"19"}`, wantID: "a", wantScore: 19},
		{name: "exponent", line: `{"id":"a","score":1e3}`, wantID: "a", wantScore: 1000},
		{name: "fractional score", line: `{"id":"a","score":1.5}`, wantErr: true},
		{name: "max int64", line: `{"id":"a","score":9223372036854775807}`, wantID: "a", wantScore: math.MaxInt64},
		{name: "min int64", line: `{"id":"a","score":-9223372036854775808}`, wantID: "a", wantScore: math.MinInt64},
		{name: "just above int64", line: `{"id":"a","score":9223372036854775808}`, wantErr: true},
		{name: "2^63 as exponent", line: `{"id":"a","score":9.223372036854775808e18}`, wantErr: true},
		{name: "just below int64", line: `{"id":"a","score":-9223372036854775809}`, wantErr: true},
		{name: "huge exponent", line: `{"id":"a","score":1e30}`, wantErr: true},
		{name: "missing score", line: `{"id":"a"}`, wantErr: true},
		{name: "null id", line: `{"id":null,"score":1}`, wantErr: true},
		{name: "array", line: `[1,2]`, wantErr: true},
		{name: "garbage", line: `{"id":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := p.Parse(tt.line)
			if tt.wantErr {
				assert.True(t, core.IsParseError(err), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, rec.ID)
			assert.Equal(t, tt.wantScore, rec.Score)
		})
	}
}

func TestJSONL_Paths(t *testing.T) {
	p := &JSONL{IDPath: "user.id", ScorePath: "stats.reputation"}
	rec, err := p.Parse(`{"user":{"id":9},"stats":{"reputation":1200},"site":"so"}`)
	require.NoError(t, err)
	assert.Equal(t, "9", rec.ID)
	assert.Equal(t, int64(1200), rec.Score)
	assert.Equal(t, map[string]string{"site": "so"}, rec.Attrs)
}
