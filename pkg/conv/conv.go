// Package conv 提供从 map[string]any（YAML/JSON 解析结果）中按类型取值的泛型工具。
package conv

import "fmt"

// ToInt 将 any 转为 int。
// 支持 int、int64、int32、float64（必须是整数值）。
func ToInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case float64:
		if val != float64(int(val)) {
			return 0, false
		}
		return int(val), true
	default:
		return 0, false
	}
}

// ConfigGet 从 config 按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigGetInt 从 config 取 int。YAML 常得到 int，JSON 得到 float64，此处统一。
func ConfigGetInt(m map[string]any, key string, defaultVal int) int {
	if m == nil {
		return defaultVal
	}
	if n, ok := ToInt(m[key]); ok {
		return n
	}
	return defaultVal
}

// ConfigGetStrings 从 config 取 []string；元素为数字时格式化为整数字符串。
func ConfigGetStrings(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		switch v := e.(type) {
		case string:
			out = append(out, v)
		case int, int64, float64:
			if n, ok := ToInt(v); ok {
				out = append(out, fmt.Sprint(n))
			}
		}
	}
	return out
}
