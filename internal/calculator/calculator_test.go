package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/VaazzDan/projeto-bi/internal/model"
)

func entry(cohort, received, paid string) *model.Entry {
	r := decimal.RequireFromString(received)
	p := decimal.RequireFromString(paid)
	return &model.Entry{Cohort: cohort, Received: r, Paid: p, Amount: r.Sub(p)}
}

func sampleEntries() []*model.Entry {
	return []*model.Entry{
		entry("PSICOLOGIA", "1000", "0"),
		entry("PSICOLOGIA", "0", "400"),
		entry("DIREITO", "500", "0"),
		entry("DIREITO", "0", "900"),
		entry("NÃO INFORMADO", "300", "0"),
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(sampleEntries())

	require.Equal(t, 5, s.Totals.Rows)
	require.True(t, s.Totals.Revenue.Equal(decimal.NewFromInt(1800)))
	require.True(t, s.Totals.Expense.Equal(decimal.NewFromInt(1300)))
	require.True(t, s.Totals.Profit.Equal(decimal.NewFromInt(500)))
	require.True(t, s.Totals.HasMargin)
	require.Equal(t, "27.78", s.Totals.Margin.StringFixed(2))
	require.True(t, s.Totals.HasROI)
	require.Equal(t, "0.38", s.Totals.ROI.StringFixed(2))

	require.Len(t, s.Cohorts, 3)
	require.Equal(t, "DIREITO", s.Cohorts[0].Cohort)
	require.True(t, s.Cohorts[0].Profit.Equal(decimal.NewFromInt(-400)))

	best, ok := s.Best()
	require.True(t, ok)
	require.Equal(t, "PSICOLOGIA", best.Cohort)

	worst, ok := s.Worst()
	require.True(t, ok)
	require.Equal(t, "DIREITO", worst.Cohort)

	top := s.Top(2)
	require.Len(t, top, 2)
	require.Equal(t, "PSICOLOGIA", top[0].Cohort)
	require.Equal(t, "NÃO INFORMADO", top[1].Cohort)
	require.Len(t, s.Top(10), 3)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil)
	require.Zero(t, s.Totals.Rows)
	require.False(t, s.Totals.HasMargin)
	require.False(t, s.Totals.HasROI)
	_, ok := s.Best()
	require.False(t, ok)

	groups := s.Indicators()
	require.Len(t, groups, 2)
	require.Len(t, groups[0].Indicators, 3)
	require.Empty(t, groups[1].Indicators)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	all := sampleEntries()
	require.Len(t, Filter(all, nil), 5)
	got := Filter(all, []string{"DIREITO"})
	require.Len(t, got, 2)
	for _, e := range got {
		require.Equal(t, "DIREITO", e.Cohort)
	}
	require.Empty(t, Filter(all, []string{"INEXISTENTE"}))
}

func TestAudit(t *testing.T) {
	t.Parallel()

	mapped := NewLabelSet(map[string]string{"25016": "PSICOLOGIA", "1": "PSICOLOGIA"})
	res := Audit(sampleEntries(), mapped)
	require.Equal(t, 5, res.Total)
	require.Len(t, res.Pending, 3)
	require.Equal(t, "40", res.Quality.StringFixed(0))

	// 映射表为空：不判定待确认
	res = Audit(sampleEntries(), NewLabelSet(nil))
	require.Empty(t, res.Pending)
	require.True(t, res.Quality.Equal(decimal.NewFromInt(100)))

	res = Audit(nil, mapped)
	require.True(t, res.Quality.Equal(decimal.NewFromInt(100)))
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	entries := sampleEntries()
	original := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		original[i] = e.Amount
	}

	ok, diff := Reconcile(original, entries)
	require.True(t, ok)
	require.True(t, diff.IsZero())

	// Tipo 为 Pago 但金额为正时出现差额
	entries[2].Received, entries[2].Paid = decimal.Zero, decimal.NewFromInt(500)
	ok, diff = Reconcile(original, entries)
	require.False(t, ok)
	require.True(t, diff.Equal(decimal.NewFromInt(1000)))
}
