package core

import (
	"cmp"
	"fmt"
	"strconv"
)

// IDOrder 是标识上的全序：a 排在 b 之前返回负数。
// 排在前面的标识在同分时名次更高（降序输出中更靠前）。
// 所有 Selector 与 Merger 实例必须使用同一个 IDOrder。
type IDOrder func(a, b string) int

// Lexicographic 是默认的标识顺序（字典序）。
func Lexicographic(a, b string) int {
	return cmp.Compare(a, b)
}

// Numeric 按整数大小比较标识；无法解析为整数的标识排在所有数字之后，再按字典序。
func Numeric(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(x, y); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

// Reverse 反转一个标识顺序。
func Reverse(o IDOrder) IDOrder {
	return func(a, b string) int { return o(b, a) }
}

// ParseIDOrder 根据配置名返回标识顺序：lexicographic（默认）/ numeric / reverse。
func ParseIDOrder(name string) (IDOrder, error) {
	switch name {
	case "", "lexicographic":
		return Lexicographic, nil
	case "numeric":
		return Numeric, nil
	case "reverse":
		return Reverse(Lexicographic), nil
	default:
		return nil, NewDomainError(ModuleConfig, ErrorCodeInvalidInput, fmt.Sprintf("unknown tie order %q", name))
	}
}

// TiePolicy 决定有界容器已满时，与当前最小值同分的候选如何处理。
type TiePolicy int

const (
	// TieKeepExisting 同分不替换，保留先到的候选（默认）。
	TieKeepExisting TiePolicy = iota
	// TieByIdentifier 同分时按 IDOrder 裁决，标识更靠前者胜出；
	// 结果与分区内到达顺序无关。
	TieByIdentifier
)

func (p TiePolicy) String() string {
	switch p {
	case TieByIdentifier:
		return "identifier"
	default:
		return "keep_existing"
	}
}

// ParseTiePolicy 解析配置中的 tie_policy。
func ParseTiePolicy(name string) (TiePolicy, error) {
	switch name {
	case "", "keep_existing":
		return TieKeepExisting, nil
	case "identifier":
		return TieByIdentifier, nil
	default:
		return TieKeepExisting, NewDomainError(ModuleConfig, ErrorCodeInvalidInput, fmt.Sprintf("unknown tie policy %q", name))
	}
}

// Rank 比较两个候选的名次：a 名次更高（应排在降序结果的前面）返回负数。
// 分数高者名次高；同分时 IDOrder 靠前者名次高。
func Rank(order IDOrder, a, b Candidate) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return order(a.ID, b.ID)
}
