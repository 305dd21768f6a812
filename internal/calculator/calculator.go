package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/VaazzDan/projeto-bi/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Indicator 指标定义
type Indicator struct {
	ID    string          `json:"id"`    // 指标ID
	Name  string          `json:"name"`  // 指标名称
	Value decimal.Decimal `json:"value"` // 指标值
	Unit  string          `json:"unit"`  // 单位 (R$、%、x)
}

// IndicatorGroup 指标分组
type IndicatorGroup struct {
	Name       string      `json:"name"`       // 分组名称
	Indicators []Indicator `json:"indicators"` // 指标列表
}

// Totals 全部行的汇总
type Totals struct {
	Rows    int             `json:"rows"`
	Revenue decimal.Decimal `json:"revenue"` // Σ Recebido
	Expense decimal.Decimal `json:"expense"` // Σ Pago
	Profit  decimal.Decimal `json:"profit"`

	// 收入为 0 时 Margin 无意义，支出为 0 时 ROI 无意义
	Margin    decimal.Decimal `json:"margin"`
	HasMargin bool            `json:"hasMargin"`
	ROI       decimal.Decimal `json:"roi"`
	HasROI    bool            `json:"hasRoi"`
}

// Summary 汇总结果（Cohorts 按名称排序）
type Summary struct {
	Totals  Totals               `json:"totals"`
	Cohorts []model.CohortTotals `json:"cohorts"`
}

// Summarize 按 Turma 汇总收支
func Summarize(entries []*model.Entry) Summary {
	byCohort := make(map[string]*model.CohortTotals)
	var t Totals

	for _, e := range entries {
		t.Rows++
		t.Revenue = t.Revenue.Add(e.Received)
		t.Expense = t.Expense.Add(e.Paid)

		ct, ok := byCohort[e.Cohort]
		if !ok {
			ct = &model.CohortTotals{Cohort: e.Cohort}
			byCohort[e.Cohort] = ct
		}
		ct.Rows++
		ct.Revenue = ct.Revenue.Add(e.Received)
		ct.Expense = ct.Expense.Add(e.Paid)
	}

	t.Profit = t.Revenue.Sub(t.Expense)
	if t.Revenue.IsPositive() {
		t.Margin = t.Profit.Div(t.Revenue).Mul(hundred)
		t.HasMargin = true
	}
	if t.Expense.IsPositive() {
		t.ROI = t.Profit.Div(t.Expense)
		t.HasROI = true
	}

	cohorts := make([]model.CohortTotals, 0, len(byCohort))
	for _, ct := range byCohort {
		ct.Profit = ct.Revenue.Sub(ct.Expense)
		cohorts = append(cohorts, *ct)
	}
	sort.Slice(cohorts, func(i, j int) bool {
		return cohorts[i].Cohort < cohorts[j].Cohort
	})

	return Summary{Totals: t, Cohorts: cohorts}
}

// Top 利润最高的 n 个 Turma（利润相同按名称）
func (s Summary) Top(n int) []model.CohortTotals {
	ranked := make([]model.CohortTotals, len(s.Cohorts))
	copy(ranked, s.Cohorts)
	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].Profit.Cmp(ranked[j].Profit); c != 0 {
			return c > 0
		}
		return ranked[i].Cohort < ranked[j].Cohort
	})
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Best 利润最高的 Turma
func (s Summary) Best() (model.CohortTotals, bool) {
	if len(s.Cohorts) == 0 {
		return model.CohortTotals{}, false
	}
	best := s.Cohorts[0]
	for _, c := range s.Cohorts[1:] {
		if c.Profit.GreaterThan(best.Profit) {
			best = c
		}
	}
	return best, true
}

// Worst 利润最低的 Turma
func (s Summary) Worst() (model.CohortTotals, bool) {
	if len(s.Cohorts) == 0 {
		return model.CohortTotals{}, false
	}
	worst := s.Cohorts[0]
	for _, c := range s.Cohorts[1:] {
		if c.Profit.LessThan(worst.Profit) {
			worst = c
		}
	}
	return worst, true
}

// Indicators 看板 KPI
func (s Summary) Indicators() []IndicatorGroup {
	t := s.Totals
	groups := []IndicatorGroup{
		{
			Name: "Resultado",
			Indicators: []Indicator{
				{ID: "revenue", Name: "Receita", Value: t.Revenue.Round(2), Unit: "R$"},
				{ID: "expense", Name: "Despesa", Value: t.Expense.Round(2), Unit: "R$"},
				{ID: "profit", Name: "Lucro", Value: t.Profit.Round(2), Unit: "R$"},
			},
		},
		{
			Name:       "Eficiência",
			Indicators: []Indicator{},
		},
	}
	if t.HasMargin {
		groups[1].Indicators = append(groups[1].Indicators, Indicator{ID: "margin", Name: "Margem", Value: t.Margin.Round(1), Unit: "%"})
	}
	if t.HasROI {
		groups[1].Indicators = append(groups[1].Indicators, Indicator{ID: "roi", Name: "ROI", Value: t.ROI.Round(2), Unit: "x"})
	}
	return groups
}

// Filter 只保留选中的 Turma；未选择时返回全部
func Filter(entries []*model.Entry, cohorts []string) []*model.Entry {
	if len(cohorts) == 0 {
		return entries
	}
	selected := make(map[string]struct{}, len(cohorts))
	for _, c := range cohorts {
		selected[c] = struct{}{}
	}
	out := make([]*model.Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := selected[e.Cohort]; ok {
			out = append(out, e)
		}
	}
	return out
}
