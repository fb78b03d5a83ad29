package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/topkit/core"
	"github.com/rushteam/topkit/parser"
	"github.com/rushteam/topkit/store"
)

func tsvLines(prefix string, scores ...int64) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = fmt.Sprintf("%s%d\t%d", prefix, i, s)
	}
	return out
}

func TestRunner_ExampleScenario(t *testing.T) {
	r := &Runner{K: 3, Parser: parser.NewTSV()}
	rep, err := r.Run(context.Background(), []Partition{
		LinesPartition{ID: "A", Lines: tsvLines("a", 5, 9, 1, 7)},
		LinesPartition{ID: "B", Lines: tsvLines("b", 8, 2, 10)},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 9, 8}, rep.Result.Scores())
	assert.Equal(t, []string{"b2", "a1", "b0"}, rep.Result.IDs())
	assert.Equal(t, 2, rep.Partitions)
	assert.Equal(t, 7, rep.Stats.Lines)
	assert.NotEmpty(t, rep.RunID)
}

func TestRunner_MatchesOracle(t *testing.T) {
	rnd := rand.New(rand.NewPCG(42, 43))
	for round := 0; round < 30; round++ {
		nParts := 1 + rnd.IntN(20)
		var (
			parts []Partition
			all   []core.Candidate
		)
		for p := 0; p < nParts; p++ {
			n := rnd.IntN(60)
			lines := make([]string, 0, n+1)
			for i := 0; i < n; i++ {
				c := core.Candidate{Score: rnd.Int64N(100) - 20, ID: fmt.Sprintf("id%d", rnd.IntN(500))}
				all = append(all, c)
				lines = append(lines, fmt.Sprintf("%s\t%d", c.ID, c.Score))
			}
			lines = append(lines, "garbage line")
			parts = append(parts, LinesPartition{ID: fmt.Sprintf("p%d", p), Lines: lines})
		}
		k := 1 + rnd.IntN(15)

		slices.SortFunc(all, func(a, b core.Candidate) int { return core.Rank(core.Lexicographic, a, b) })
		want := append(make(core.Result, 0, k), all[:min(k, len(all))]...)

		r := &Runner{
			K:            k,
			Parser:       parser.NewTSV(),
			TiePolicy:    core.TieByIdentifier,
			Concurrency:  1 + rnd.IntN(4),
			CombineFanIn: rnd.IntN(5),
		}
		rep, err := r.Run(context.Background(), parts)
		require.NoError(t, err)
		require.Equal(t, want, rep.Result, "round %d k=%d fanIn=%d", round, k, r.CombineFanIn)
		require.Equal(t, nParts, rep.Stats.Malformed)
		if r.CombineFanIn >= 2 && nParts > r.CombineFanIn {
			assert.Positive(t, rep.CombineRounds)
		}
	}
}

func TestRunner_CombineRounds(t *testing.T) {
	parts := make([]Partition, 9)
	for i := range parts {
		parts[i] = LinesPartition{ID: fmt.Sprint(i), Lines: tsvLines(fmt.Sprintf("p%d-", i), int64(i), int64(i*10))}
	}
	r := &Runner{K: 2, Parser: parser.NewTSV(), CombineFanIn: 2}
	rep, err := r.Run(context.Background(), parts)
	require.NoError(t, err)
	// 9 -> 5 -> 3 -> 2
	assert.Equal(t, 3, rep.CombineRounds)
	assert.Equal(t, []int64{80, 70}, rep.Result.Scores())
}

func TestRunner_NoPartitions(t *testing.T) {
	r := &Runner{K: 5, Parser: parser.NewTSV()}
	rep, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rep.Result)
}

func TestRunner_Sanity(t *testing.T) {
	_, err := (&Runner{K: 0, Parser: parser.NewTSV()}).Run(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidK)

	_, err = (&Runner{K: 1}).Run(context.Background(), nil)
	assert.True(t, core.IsInvalidInput(err))
}

type failingPartition struct{ err error }

func (p failingPartition) Name() string { return "broken" }
func (p failingPartition) Open(context.Context) (io.ReadCloser, error) {
	return nil, p.err
}

func TestRunner_PartitionFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	parts := []Partition{
		LinesPartition{ID: "ok", Lines: tsvLines("a", 1, 2, 3)},
		failingPartition{err: boom},
	}
	_, err := (&Runner{K: 2, Parser: parser.NewTSV(), Concurrency: 1}).Run(context.Background(), parts)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Runner{K: 2, Parser: parser.NewTSV()}).Run(ctx, []Partition{
		LinesPartition{ID: "a", Lines: tsvLines("a", 1)},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_FilesPayloadAndSink(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.xml")
	fileB := filepath.Join(dir, "b.xml")
	require.NoError(t, os.WriteFile(fileA, []byte(
		"<?xml version=\"1.0\" encoding=\"utf-8\"?>\r\n<users>\r\n"+
			"  <row Id=\"1\" Reputation=\"50\" />\r\n"+
			"  <row Id=\"2\" Reputation=\"900\" />\r\n</users>\r\n"), 0o600))
	require.NoError(t, os.WriteFile(fileB, []byte(
		"  <row Id=\"3\" Reputation=\"300\" />\n  <row Id=\"4\" Reputation=\"7\" />"), 0o600))

	kv := store.NewMemoryStore()
	r := &Runner{
		K:           2,
		Parser:      parser.NewXMLRow(),
		KeepPayload: true,
		Sink:        &store.StoreSink{Store: kv, Key: "lb"},
	}
	rep, err := r.Run(context.Background(), FilePartitions(fileA, fileB))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, rep.Result.IDs())
	assert.Equal(t, `  <row Id="2" Reputation="900" />`, rep.Result[0].Payload)
	assert.Equal(t, 3, rep.Stats.Malformed)

	saved, err := store.LoadResult(context.Background(), kv, "lb", nil)
	require.NoError(t, err)
	assert.Equal(t, rep.Result, saved)
}
