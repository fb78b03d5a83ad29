package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/topkit/core"
)

func rec(id string, score int64, attrs map[string]string) core.Record {
	return core.Record{ID: id, Score: score, Attrs: attrs}
}

func TestCELFilter_Match(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		record  core.Record
		want    bool
		wantErr bool
	}{
		{name: "score threshold", expr: "score >= 100", record: rec("a", 150, nil), want: true},
		{name: "score below", expr: "score >= 100", record: rec("a", 99, nil), want: false},
		{name: "attr equality", expr: `attrs.Location == "Sweden"`, record: rec("a", 1, map[string]string{"Location": "Sweden"}), want: true},
		{name: "attr conversion", expr: `int(attrs.UpVotes) > 10`, record: rec("a", 1, map[string]string{"UpVotes": "11"}), want: true},
		{name: "existence check", expr: `"WebsiteUrl" in attrs`, record: rec("a", 1, map[string]string{}), want: false},
		{name: "record map", expr: `record.id != "-1" && record.score > 0`, record: rec("7", 3, nil), want: true},
		{name: "missing key errors", expr: `attrs.Location == "x"`, record: rec("a", 1, nil), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewCELFilter(tt.expr)
			require.NoError(t, err)
			got, err := f.Match(tt.record)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewCELFilter_Invalid(t *testing.T) {
	for _, expr := range []string{"score >", "score + 1", "unknown_var == 1"} {
		_, err := NewCELFilter(expr)
		require.Error(t, err, expr)
		assert.True(t, core.IsInvalidInput(err), expr)
	}
}

func TestBlacklistAndCombine(t *testing.T) {
	bl := NewBlacklistFilter([]string{"-1"})
	ok, err := bl.Match(rec("-1", 1, nil))
	require.NoError(t, err)
	assert.False(t, ok)

	positive, err := NewCELFilter("score > 0")
	require.NoError(t, err)

	assert.Nil(t, Combine())
	assert.Same(t, bl, Combine(nil, bl))

	chain := Combine(bl, positive)
	assert.Contains(t, chain.Name(), "filter.blacklist")

	ok, err = chain.Match(rec("1", 5, nil))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = chain.Match(rec("1", -5, nil))
	require.NoError(t, err)
	assert.False(t, ok)
}
