// Command topk 从一组输入文件中选出分数最高的 K 条记录。
//
// 每个输入文件是一个分区（没有参数时读取 STDIN）；分区并行选择，
// 结果经部分合并与唯一一次最终合并后按分数降序输出。
//
//	topk -k 10 -parser xmlrow -payload users-*.xml
//	topk -config job.yaml -redis-addr localhost:6379 -redis-key topk:users data/*.xml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rushteam/topkit/config"
	"github.com/rushteam/topkit/log"
	"github.com/rushteam/topkit/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type flags struct {
	config      string
	k           int
	parser      string
	idField     string
	scoreField  string
	filter      string
	blacklist   string
	concurrency int
	fanIn       int
	tiePolicy   string
	tieOrder    string
	payload     bool
	format      string
	redisAddr   string
	redisKey    string
	logLevel    string
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, map[string]bool, error) {
	f := &flags{}
	fs := flag.NewFlagSet("topk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "", "作业配置文件（YAML 或 JSON）")
	fs.IntVar(&f.k, "k", 10, "保留的结果数")
	fs.StringVar(&f.parser, "parser", "xmlrow", "记录格式：xmlrow / tsv / jsonl")
	fs.StringVar(&f.idField, "id-field", "", "标识字段（xmlrow 属性名 / jsonl 路径）")
	fs.StringVar(&f.scoreField, "score-field", "", "分数字段（xmlrow 属性名 / jsonl 路径）")
	fs.StringVar(&f.filter, "filter", "", "CEL 过滤表达式，例如 'score > 100'")
	fs.StringVar(&f.blacklist, "blacklist", "", "逗号分隔的排除标识")
	fs.IntVar(&f.concurrency, "concurrency", 0, "并行分区数（0 表示 CPU 核数）")
	fs.IntVar(&f.fanIn, "fan-in", 0, "部分合并扇入（<2 表示不做部分合并）")
	fs.StringVar(&f.tiePolicy, "tie-policy", "keep_existing", "边界同分策略：keep_existing / identifier")
	fs.StringVar(&f.tieOrder, "tie-order", "lexicographic", "标识顺序：lexicographic / numeric / reverse")
	fs.BoolVar(&f.payload, "payload", false, "输出中附带原始记录")
	fs.StringVar(&f.format, "format", "text", "标准输出格式：text / json；none 表示不输出")
	fs.StringVar(&f.redisAddr, "redis-addr", "", "同时把结果保存到 Redis（host:port）")
	fs.StringVar(&f.redisKey, "redis-key", "topk:result", "Redis 有序集合 key")
	fs.StringVar(&f.logLevel, "log-level", log.LevelInfo, "日志级别：debug / info / warn / error")
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, fs.Args(), set, nil
}

// buildConfig 以配置文件为基础，命令行中显式给出的旗标覆盖对应字段。
func buildConfig(f *flags, set map[string]bool) (*pipeline.Config, error) {
	cfg := &pipeline.Config{}
	if f.config != "" {
		loaded, err := pipeline.LoadConfig(f.config)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", f.config, err)
		}
		cfg = loaded
	}
	job := &cfg.Job
	fromFile := f.config != ""
	override := func(name string) bool { return set[name] || !fromFile }

	if override("k") {
		job.K = f.k
	}
	if override("parser") {
		job.Parser.Type = f.parser
	}
	if f.idField != "" || f.scoreField != "" {
		if job.Parser.Config == nil {
			job.Parser.Config = make(map[string]interface{})
		}
		if f.idField != "" {
			job.Parser.Config["id_field"] = f.idField
		}
		if f.scoreField != "" {
			job.Parser.Config["score_field"] = f.scoreField
		}
	}
	if f.filter != "" {
		job.Filter = f.filter
	}
	for _, id := range strings.Split(f.blacklist, ",") {
		if id = strings.TrimSpace(id); id != "" {
			job.Blacklist = append(job.Blacklist, id)
		}
	}
	if override("concurrency") {
		job.Concurrency = f.concurrency
	}
	if override("fan-in") {
		job.CombineFanIn = f.fanIn
	}
	if override("tie-policy") {
		job.TiePolicy = f.tiePolicy
	}
	if override("tie-order") {
		job.TieOrder = f.tieOrder
	}
	if set["payload"] {
		job.KeepPayload = f.payload
	}
	if override("format") {
		sinks := job.Sinks[:0]
		for _, s := range job.Sinks {
			if s.Type != "stdout" {
				sinks = append(sinks, s)
			}
		}
		if f.format != "none" {
			sinks = append(sinks, pipeline.ComponentConfig{
				Type:   "stdout",
				Config: map[string]interface{}{"format": f.format},
			})
		}
		job.Sinks = sinks
	}
	if f.redisAddr != "" {
		job.Sinks = append(job.Sinks, pipeline.ComponentConfig{
			Type:   "redis",
			Config: map[string]interface{}{"addr": f.redisAddr, "key": f.redisKey},
		})
	}
	return cfg, nil
}

func partitions(paths []string, stdin io.Reader) []pipeline.Partition {
	if len(paths) == 0 || (len(paths) == 1 && paths[0] == "-") {
		return []pipeline.Partition{pipeline.ReaderPartition{ID: "stdin", R: stdin}}
	}
	return pipeline.FilePartitions(paths...)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f, paths, set, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}
	log.SetLevel(f.logLevel)

	cfg, err := buildConfig(f, set)
	if err != nil {
		fmt.Fprintf(stderr, "topk: %v\n", err)
		return 2
	}
	runner, err := config.BuildRunner(cfg, config.Env{Stdout: stdout})
	if err != nil {
		fmt.Fprintf(stderr, "topk: %v\n", err)
		return 2
	}
	defer func() {
		if err := config.CloseSink(runner.Sink); err != nil {
			log.Warnf("close sink: %v", err)
		}
	}()

	rep, err := runner.Run(ctx, partitions(paths, stdin))
	if err != nil {
		fmt.Fprintf(stderr, "topk: %v\n", err)
		return 1
	}
	log.Debugf("run %s: %d partitions, %d results", rep.RunID, rep.Partitions, len(rep.Result))
	return 0
}
