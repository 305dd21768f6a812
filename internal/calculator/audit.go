package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/VaazzDan/projeto-bi/internal/model"
)

// MappedLabels 持久化映射表中的规范标签集合
type MappedLabels interface {
	IsMapped(label string) bool
	MappedCount() int
}

// AuditResult 审计结果
type AuditResult struct {
	Total   int             `json:"total"`
	Pending []*model.Entry  `json:"pending"`
	Quality decimal.Decimal `json:"quality"` // 百分比
}

// Audit 找出 Turma 不在映射表中的行
//
// 映射表为空时不判定任何待确认行。
func Audit(entries []*model.Entry, mapped MappedLabels) AuditResult {
	res := AuditResult{Total: len(entries), Pending: []*model.Entry{}}
	if mapped != nil && mapped.MappedCount() > 0 {
		for _, e := range entries {
			if !mapped.IsMapped(e.Cohort) {
				res.Pending = append(res.Pending, e)
			}
		}
	}

	if res.Total == 0 {
		res.Quality = hundred
		return res
	}
	ratio := decimal.NewFromInt(int64(len(res.Pending))).Div(decimal.NewFromInt(int64(res.Total)))
	res.Quality = decimal.NewFromInt(1).Sub(ratio).Mul(hundred)
	return res
}

// LabelSet 以标签集合实现 MappedLabels（用于读取已有结果文件时）
type LabelSet map[string]struct{}

// NewLabelSet 由 ID 索引的值构建标签集合
func NewLabelSet(index map[string]string) LabelSet {
	s := make(LabelSet, len(index))
	for _, label := range index {
		s[label] = struct{}{}
	}
	return s
}

// IsMapped 标签是否在集合中
func (s LabelSet) IsMapped(label string) bool {
	_, ok := s[label]
	return ok
}

// MappedCount 集合大小
func (s LabelSet) MappedCount() int {
	return len(s)
}

// Reconcile 对账：原始金额合计与 Σ收入−Σ支出 保留两位小数后应相等
//
// 返回是否一致以及差额（原始 − 处理后）。
func Reconcile(original []decimal.Decimal, entries []*model.Entry) (bool, decimal.Decimal) {
	orig := decimal.Sum(decimal.Zero, original...).Round(2)

	processed := decimal.Zero
	for _, e := range entries {
		processed = processed.Add(e.Received).Sub(e.Paid)
	}
	processed = processed.Round(2)

	diff := orig.Sub(processed)
	return diff.IsZero(), diff
}
