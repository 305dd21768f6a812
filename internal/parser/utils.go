package parser

import (
	"strconv"
	"strings"
)

// NormalizeColumnName 规范化列名，去除所有空白字符
func NormalizeColumnName(name string) string {
	return strings.Join(strings.Fields(name), "")
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// uniqueHeaders 表头去空白；空表头与重复表头改名，保证作为 map 键唯一
func uniqueHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Coluna " + strconv.Itoa(i+1)
		}
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n)
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	return out
}
