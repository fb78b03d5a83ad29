package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rushteam/topkit/core"
	"github.com/rushteam/topkit/log"
)

// Sink 接收最终 Result。运行时只在最终合并完成后调用一次 Write。
type Sink interface {
	Name() string
	Write(ctx context.Context, res core.Result) error
}

// 输出格式
const (
	FormatText = "text" // score<TAB>id[<TAB>payload]
	FormatJSON = "json" // 每行一个 {"rank":1,"score":..,"id":..,"payload":..}
)

// WriterSink 把 Result 按行写到 io.Writer（通常是 stdout 或文件）。
type WriterSink struct {
	W      io.Writer
	Format string
}

func (s *WriterSink) Name() string { return "writer." + s.format() }

func (s *WriterSink) format() string {
	if s.Format == "" {
		return FormatText
	}
	return s.Format
}

type jsonLine struct {
	Rank    int    `json:"rank"`
	Score   int64  `json:"score"`
	ID      string `json:"id"`
	Payload string `json:"payload,omitempty"`
}

func (s *WriterSink) Write(_ context.Context, res core.Result) error {
	w := bufio.NewWriter(s.W)
	switch s.format() {
	case FormatText:
		for _, c := range res {
			var err error
			if c.Payload != "" {
				_, err = fmt.Fprintf(w, "%d\t%s\t%s\n", c.Score, c.ID, c.Payload)
			} else {
				_, err = fmt.Fprintf(w, "%d\t%s\n", c.Score, c.ID)
			}
			if err != nil {
				return err
			}
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		for i, c := range res {
			if err := enc.Encode(jsonLine{Rank: i + 1, Score: c.Score, ID: c.ID, Payload: c.Payload}); err != nil {
				return err
			}
		}
	default:
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, fmt.Sprintf("unknown output format %q", s.Format))
	}
	return w.Flush()
}

// StoreSink 把 Result 保存为 KeyValueStore 中的排行榜。
type StoreSink struct {
	Store core.KeyValueStore
	Key   string
}

func (s *StoreSink) Name() string { return "store." + s.Store.Name() }

func (s *StoreSink) Write(ctx context.Context, res core.Result) error {
	if err := SaveResult(ctx, s.Store, s.Key, res); err != nil {
		return err
	}
	log.Infof("saved %d results to %s key=%s", len(res), s.Store.Name(), s.Key)
	return nil
}

// MultiSink 依次写入多个 Sink，遇到第一个错误即返回。
type MultiSink []Sink

func (m MultiSink) Name() string { return "multi" }

func (m MultiSink) Write(ctx context.Context, res core.Result) error {
	for _, s := range m {
		if err := s.Write(ctx, res); err != nil {
			return fmt.Errorf("sink %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Close 关闭底层存储连接。
func (s *StoreSink) Close() error { return s.Store.Close() }

// Close 关闭所有实现了 io.Closer 的 Sink，返回合并后的错误。
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
