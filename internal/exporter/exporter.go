package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/VaazzDan/projeto-bi/internal/calculator"
	"github.com/VaazzDan/projeto-bi/internal/model"
	"github.com/VaazzDan/projeto-bi/internal/parser"
)

// 结果工作簿追加的列
const (
	ColumnReceived = "Recebido"
	ColumnPaid     = "Pago"
	ColumnCohort   = "Turma_Padronizada"
)

// Sheet 名
const (
	ResultSheet  = "Dados"
	SummarySheet = "Resumo"
)

// ResultHeaders 结果表头：原始列 + Recebido/Pago/Turma_Padronizada
//
// 原始表中已有同名列时保留原位置，由计算值覆盖。
func ResultHeaders(headers []string) []string {
	out := make([]string, 0, len(headers)+3)
	has := make(map[string]bool, 3)
	for _, h := range headers {
		switch h {
		case ColumnReceived, ColumnPaid, ColumnCohort:
			has[h] = true
		}
		out = append(out, h)
	}
	for _, h := range []string{ColumnReceived, ColumnPaid, ColumnCohort} {
		if !has[h] {
			out = append(out, h)
		}
	}
	return out
}

// WriteResult 写出处理结果工作簿（明细 + Resumo 汇总）
func WriteResult(path string, headers []string, entries []*model.Entry, progress func(ProgressEvent)) error {
	reportProgress(progress, 0, "preparando planilha")

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultSheet); err != nil {
		return fmt.Errorf("failed to rename result sheet: %w", err)
	}

	cols := ResultHeaders(headers)
	header := make([]interface{}, len(cols))
	for i, h := range cols {
		header[i] = h
	}
	if err := f.SetSheetRow(ResultSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write result header: %w", err)
	}

	total := len(entries)
	step := total / 10
	if step == 0 {
		step = 1
	}
	for i, e := range entries {
		row := make([]interface{}, len(cols))
		for j, h := range cols {
			row[j] = resultValue(e, h)
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ResultSheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write result row %d: %w", i+2, err)
		}
		if (i+1)%step == 0 {
			reportProgress(progress, 5+(i+1)*80/total, "gravando linhas")
		}
	}

	reportProgress(progress, 90, "gerando resumo")
	if err := WriteSummarySheet(f, calculator.Summarize(entries)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := saveAtomic(f, path); err != nil {
		return err
	}
	reportProgress(progress, 100, "concluído")
	return nil
}

func resultValue(e *model.Entry, header string) interface{} {
	switch header {
	case ColumnReceived:
		return e.Received.InexactFloat64()
	case ColumnPaid:
		return e.Paid.InexactFloat64()
	case ColumnCohort:
		return e.Cohort
	default:
		return e.Value(header)
	}
}

// WriteSummarySheet 在工作簿中写入（或重建）Resumo 汇总表
func WriteSummarySheet(f *excelize.File, s calculator.Summary) error {
	if idx, _ := f.GetSheetIndex(SummarySheet); idx >= 0 {
		if err := f.DeleteSheet(SummarySheet); err != nil {
			return fmt.Errorf("failed to reset summary sheet: %w", err)
		}
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	header := []interface{}{"Turma", "Linhas", "Recebido", "Pago", "Margem"}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	for i, c := range s.Cohorts {
		row := []interface{}{
			c.Cohort,
			c.Rows,
			c.Revenue.Round(2).InexactFloat64(),
			c.Expense.Round(2).InexactFloat64(),
			c.Profit.Round(2).InexactFloat64(),
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+2, err)
		}
	}

	t := s.Totals
	totalRow := []interface{}{
		"TOTAL",
		t.Rows,
		t.Revenue.Round(2).InexactFloat64(),
		t.Expense.Round(2).InexactFloat64(),
		t.Profit.Round(2).InexactFloat64(),
	}
	axis, err := excelize.CoordinatesToCellName(1, len(s.Cohorts)+2)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SummarySheet, axis, &totalRow); err != nil {
		return fmt.Errorf("failed to write summary total: %w", err)
	}
	return nil
}

// Result 读回的结果工作簿
type Result struct {
	Headers []string
	Entries []*model.Entry
}

// ReadResult 读取 WriteResult 写出的工作簿
func ReadResult(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result: %w", err)
	}
	defer f.Close()

	sheet := ResultSheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetList()[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read result sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("result sheet %q is empty", sheet)
	}

	headers := make([]string, len(rows[0]))
	col := map[string]int{}
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		col[headers[i]] = i
	}
	cohortCol, ok := col[ColumnCohort]
	if !ok {
		return nil, fmt.Errorf("result sheet has no %s column", ColumnCohort)
	}

	res := &Result{Headers: headers}
	for idx := 1; idx < len(rows); idx++ {
		row := rows[idx]
		e := &model.Entry{
			RowNo:   idx + 1,
			Fields:  make(map[string]string, len(headers)),
			Headers: headers,
		}
		empty := true
		for i, h := range headers {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			if strings.TrimSpace(v) == "" {
				e.Fields[h] = v
				continue
			}
			empty = false
			e.Fields[h] = v
			axis, err := excelize.CoordinatesToCellName(i+1, idx+1)
			if err != nil {
				continue
			}
			if tv, ok := parser.TypedValue(f, sheet, axis); ok {
				if e.Values == nil {
					e.Values = make(map[string]interface{})
				}
				e.Values[h] = tv
			}
		}
		if empty {
			continue
		}
		e.Cohort = e.Fields[headers[cohortCol]]
		if i, ok := col[ColumnReceived]; ok {
			e.Received = readAmount(e.Fields[headers[i]])
		}
		if i, ok := col[ColumnPaid]; ok {
			e.Paid = readAmount(e.Fields[headers[i]])
		}
		e.Amount = e.Received.Sub(e.Paid)
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func readAmount(v string) decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
		return d
	}
	return parser.ParseAmount(v)
}

func saveAtomic(f *excelize.File, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".resultado-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp result file: %w", err)
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()

	if err := f.SaveAs(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save result: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move result into place: %w", err)
	}
	return nil
}
