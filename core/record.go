package core

// Record 是一行原始输入解析后的结果。
// Score 是唯一的排序键；ID 只用于同分裁决与下游查找。
// Attrs 保存解析出的其余字段（例如 XML 行的全部属性），供过滤表达式使用。
type Record struct {
	ID    string
	Score int64
	Attrs map[string]string
	Raw   string
}
