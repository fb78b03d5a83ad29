package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - Selector / Merger 关闭后继续写入：CLOSED
//   - 解析失败：PARSE_ERROR（Selector 内部吞掉，不向上传播）
//   - Store 错误：NOT_FOUND
//   - 配置错误：INVALID_INPUT
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "CLOSED"）
	Message string // 错误消息
	Module  string // 模块名称（如 "selector", "store"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 让 errors.Is 按 Module + Code 匹配，包装后的错误同样适用。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError（支持 %w 包装），如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效
	ErrorCodeClosed       = "CLOSED"        // 已进入终态，不再接受写入
	ErrorCodeParse        = "PARSE_ERROR"   // 原始记录格式错误
)

// 模块名称常量
const (
	ModuleSelector = "selector" // 分区选择
	ModuleMerger   = "merger"   // 全局合并
	ModuleParser   = "parser"   // 记录解析
	ModuleStore    = "store"    // 存储模块
	ModulePipeline = "pipeline" // 运行时
	ModuleConfig   = "config"   // 配置
)

var (
	// ErrClosed 表示 Selector / Merger 已产出结果，不再接受 Offer / Add。
	ErrClosed = NewDomainError(ModuleSelector, ErrorCodeClosed, "topk: container closed")

	// ErrMergerClosed 表示 Merger 已产出结果，不再接受 Add。
	ErrMergerClosed = NewDomainError(ModuleMerger, ErrorCodeClosed, "topk: merger closed")

	// ErrInvalidK 表示 K < 1。
	ErrInvalidK = NewDomainError(ModuleConfig, ErrorCodeInvalidInput, "topk: k must be >= 1")

	// ErrMalformedRecord 由 Parser 返回，表示该行不是合法记录。
	ErrMalformedRecord = NewDomainError(ModuleParser, ErrorCodeParse, "parser: malformed record")
)

// IsClosed 检查错误是否为 CLOSED（Selector 或 Merger）
func IsClosed(err error) bool {
	return hasCode(err, ErrorCodeClosed)
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsParseError 检查错误是否为 PARSE_ERROR
func IsParseError(err error) bool {
	return hasCode(err, ErrorCodeParse)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}
