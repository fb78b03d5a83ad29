package core

// Candidate 是进入有界容器的最小单元：(score, identifier)。
// 创建后不可变；Payload 为选择时附带的原始记录，避免下游按 ID 回扫输入。
type Candidate struct {
	Score   int64  `json:"score"`
	ID      string `json:"id"`
	Payload string `json:"payload,omitempty"`
}

// NewCandidate 由 Record 构造 Candidate；keepPayload 为 true 时附带原始行。
func NewCandidate(r Record, keepPayload bool) Candidate {
	c := Candidate{Score: r.Score, ID: r.ID}
	if keepPayload {
		c.Payload = r.Raw
	}
	return c
}

// Result 是最终输出：按分数降序、同分按标识顺序排列的 <= K 个 Candidate。
type Result []Candidate

// IDs 返回结果中的标识序列，便于日志与测试。
func (r Result) IDs() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.ID
	}
	return out
}

// Scores 返回结果中的分数序列。
func (r Result) Scores() []int64 {
	out := make([]int64, len(r))
	for i, c := range r {
		out[i] = c.Score
	}
	return out
}
