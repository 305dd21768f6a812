package mapping

import (
	"strings"

	"github.com/VaazzDan/projeto-bi/internal/normalize"
)

// 映射表列名
const (
	ColumnDe   = "De"
	ColumnPara = "Para"
)

// Pair 映射表中的一行：原始标签样本 -> 规范标签
type Pair struct {
	De   string `json:"de"`
	Para string `json:"para"`
}

// Table 持久化的 De/Para 映射表（保持行顺序）
type Table struct {
	Rows []Pair `json:"rows"`
}

// Len 行数
func (t Table) Len() int {
	return len(t.Rows)
}

// Store 映射表存储
//
// Load 在存储不存在时创建空表并返回空结果；Persist 仅在 discovered 非空时写入。
// 不支持并发写入：两个同时运行的批处理会互相覆盖。
type Store interface {
	Load() (Table, map[string]string, error)
	Persist(t Table, discovered []Pair) error
}

// EditableStore 支持整表覆盖的存储（映射编辑器）
type EditableStore interface {
	Store
	Replace(t Table) error
}

// BuildIndex 由映射表构建 ID -> 规范标签 索引
//
// Para 为空的行跳过；De 没有前导 ID 的行跳过；同一 ID 多行时后出现的覆盖先出现的。
func BuildIndex(t Table) map[string]string {
	index := make(map[string]string)
	for _, row := range t.Rows {
		if row.Para == "" {
			continue
		}
		id, ok := normalize.ExtractLeadingID(row.De)
		if !ok {
			continue
		}
		index[id] = strings.ToUpper(row.Para)
	}
	return index
}

// Merge 追加新发现的行，并按 De 去重（保留首次出现）
func Merge(t Table, discovered []Pair) Table {
	out := Table{Rows: make([]Pair, 0, len(t.Rows)+len(discovered))}
	seen := make(map[string]struct{}, len(t.Rows)+len(discovered))

	appendRow := func(p Pair) {
		if _, ok := seen[p.De]; ok {
			return
		}
		seen[p.De] = struct{}{}
		out.Rows = append(out.Rows, p)
	}

	for _, p := range t.Rows {
		appendRow(p)
	}
	for _, p := range discovered {
		appendRow(p)
	}
	return out
}

// CapitalizeHeader 列名容错：去空白，首字母大写其余小写
func CapitalizeHeader(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r := []rune(strings.ToLower(name))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
