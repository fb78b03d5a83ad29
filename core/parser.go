package core

// Parser 把一行原始输入解析为 Record。
// 无法解析的行返回 ErrMalformedRecord（或包装它的错误）；调用方负责丢弃。
// 实现必须无状态或并发安全：同一个 Parser 会被多个分区同时使用。
type Parser interface {
	Name() string
	Parse(line string) (Record, error)
}

// Filter 判断解析后的记录是否参与选择；返回 false 表示丢弃。
// 与 Parser 一样会被多个分区并发调用。
type Filter interface {
	Name() string
	Match(r Record) (bool, error)
}
