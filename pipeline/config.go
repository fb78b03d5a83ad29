package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 Top-K 作业的配置结构（支持 YAML/JSON）。
type Config struct {
	Job JobConfig `yaml:"job" json:"job"`
}

// JobConfig 描述一次 Top-K 作业。
type JobConfig struct {
	Name         string            `yaml:"name" json:"name"`
	K            int               `yaml:"k" json:"k"`
	TiePolicy    string            `yaml:"tie_policy" json:"tie_policy"`         // keep_existing / identifier
	TieOrder     string            `yaml:"tie_order" json:"tie_order"`           // lexicographic / numeric / reverse
	KeepPayload  bool              `yaml:"keep_payload" json:"keep_payload"`     // 候选携带原始行
	Concurrency  int               `yaml:"concurrency" json:"concurrency"`       // 分区选择并发数
	CombineFanIn int               `yaml:"combine_fan_in" json:"combine_fan_in"` // 部分合并扇入，<2 表示不做部分合并
	Parser       ComponentConfig   `yaml:"parser" json:"parser"`
	Filter       string            `yaml:"filter" json:"filter"`       // CEL 表达式（可选）
	Blacklist    []string          `yaml:"blacklist" json:"blacklist"` // 排除的标识（可选）
	Sinks        []ComponentConfig `yaml:"sinks" json:"sinks"`
}

// ComponentConfig 是单个可插拔组件（parser / sink）的配置。
type ComponentConfig struct {
	Type   string                 `yaml:"type" json:"type"`     // xmlrow / tsv / jsonl / stdout / redis 等
	Config map[string]interface{} `yaml:"config" json:"config"` // 组件特定配置
}

// LoadFromYAML 从 YAML 文件加载作业配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载作业配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return &cfg, nil
}

// LoadConfig 按扩展名选择 JSON 或 YAML。
func LoadConfig(path string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadFromJSON(path)
	}
	return LoadFromYAML(path)
}
