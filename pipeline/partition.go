package pipeline

import (
	"context"
	"io"
	"os"
	"strings"
)

// Partition 是一个可独立处理的输入分片，由运行时交给一个 Selector。
// Open 可能被重复调用（重新投递），每次都必须从头返回同样的内容。
type Partition interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FilePartition 以整个文件作为一个分区。
type FilePartition struct {
	Path string
}

func (p FilePartition) Name() string { return p.Path }

func (p FilePartition) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(p.Path)
}

// FilePartitions 为每个路径创建一个分区。
func FilePartitions(paths ...string) []Partition {
	out := make([]Partition, len(paths))
	for i, p := range paths {
		out[i] = FilePartition{Path: p}
	}
	return out
}

// LinesPartition 是内存中的分区，主要用于测试与嵌入式调用。
type LinesPartition struct {
	ID    string
	Lines []string
}

func (p LinesPartition) Name() string { return p.ID }

func (p LinesPartition) Open(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(strings.Join(p.Lines, "\n"))), nil
}

// ReaderPartition 包装一个只能读取一次的 io.Reader（例如 stdin）。
type ReaderPartition struct {
	ID string
	R  io.Reader
}

func (p ReaderPartition) Name() string { return p.ID }

func (p ReaderPartition) Open(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(p.R), nil
}
