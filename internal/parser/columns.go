package parser

import (
	"fmt"
	"strings"

	"github.com/VaazzDan/projeto-bi/internal/config"
	"github.com/VaazzDan/projeto-bi/internal/normalize"
)

// ColumnMapping 台账列位置（-1 表示不存在）
type ColumnMapping struct {
	Label    int `json:"label"`
	Amount   int `json:"amount"`
	Type     int `json:"type"`
	Received int `json:"received"`
	Paid     int `json:"paid"`
}

// PreSplit 台账没有金额列、但已拆分为 Recebido/Pago 两列
func (m ColumnMapping) PreSplit() bool {
	return m.Amount < 0 && (m.Received >= 0 || m.Paid >= 0)
}

// ColumnResolver 按配置的候选列名识别台账列
type ColumnResolver struct {
	labelCandidates  []string
	labelKeywords    []string
	amountCandidates []string
	typeCandidates   []string
}

// NewColumnResolver 创建列识别器
func NewColumnResolver(cfg config.ColumnsConfig) *ColumnResolver {
	r := &ColumnResolver{
		labelCandidates:  cfg.LabelCandidates,
		amountCandidates: cfg.AmountCandidates,
		typeCandidates:   cfg.TypeCandidates,
	}
	for _, kw := range cfg.LabelKeywords {
		if kw = normalize.NormalizeText(kw); kw != "" {
			r.labelKeywords = append(r.labelKeywords, kw)
		}
	}
	return r
}

// Resolve 识别列；找不到时回落到第一列，并返回警告
func (r *ColumnResolver) Resolve(headers []string) (ColumnMapping, []string) {
	m := ColumnMapping{Label: -1, Amount: -1, Type: -1, Received: -1, Paid: -1}
	var warnings []string
	if len(headers) == 0 {
		return m, []string{"planilha sem cabeçalho"}
	}

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalize.NormalizeText(h)
	}

	// 标签列：候选名精确匹配 > 关键词包含 > 第一列
	m.Label = findExact(headers, r.labelCandidates, false)
	if m.Label < 0 {
		for i, h := range normalized {
			if ContainsAny(h, r.labelKeywords) {
				m.Label = i
				break
			}
		}
	}
	if m.Label < 0 {
		m.Label = 0
		warnings = append(warnings, fmt.Sprintf("coluna de turma não encontrada; usando a primeira coluna (%q)", headers[0]))
	}

	m.Amount = findExact(headers, r.amountCandidates, false)
	if m.Amount < 0 {
		m.Amount = findExact(headers, r.amountCandidates, true)
	}
	m.Type = findExact(headers, r.typeCandidates, true)

	if m.Amount < 0 {
		for i, h := range normalized {
			switch h {
			case "recebido":
				if m.Received < 0 {
					m.Received = i
				}
			case "pago":
				if m.Paid < 0 {
					m.Paid = i
				}
			}
		}
		if !m.PreSplit() {
			m.Amount = 0
			warnings = append(warnings, fmt.Sprintf("coluna de valor não encontrada; usando a primeira coluna (%q)", headers[0]))
		}
	}

	return m, warnings
}

// findExact 按候选顺序查找列；fold 为 true 时忽略大小写
func findExact(headers, candidates []string, fold bool) int {
	for _, cand := range candidates {
		want := NormalizeColumnName(cand)
		if want == "" {
			continue
		}
		for i, h := range headers {
			got := NormalizeColumnName(h)
			if got == want || (fold && strings.EqualFold(got, want)) {
				return i
			}
		}
	}
	return -1
}
