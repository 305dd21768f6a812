package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/VaazzDan/projeto-bi/internal/config"
	"github.com/VaazzDan/projeto-bi/internal/model"
)

// Ledger 解析后的台账
type Ledger struct {
	Sheet    string         `json:"sheet"`
	Headers  []string       `json:"headers"`
	Columns  ColumnMapping  `json:"columns"`
	Entries  []*model.Entry `json:"-"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Amounts 每行的原始金额（用于对账）
func (l *Ledger) Amounts() []decimal.Decimal {
	out := make([]decimal.Decimal, len(l.Entries))
	for i, e := range l.Entries {
		out[i] = e.Amount
	}
	return out
}

// LedgerReader 台账读取器
type LedgerReader struct {
	columns *ColumnResolver
}

// NewLedgerReader 创建台账读取器
func NewLedgerReader(cfg config.ColumnsConfig) *LedgerReader {
	return &LedgerReader{columns: NewColumnResolver(cfg)}
}

// ReadFile 打开工作簿并读取指定 Sheet（为空时读第一个）
func (r *LedgerReader) ReadFile(path, sheet string) (*Ledger, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()
	return r.Read(f, sheet)
}

// Read 读取台账行；标签列、金额列按 ColumnResolver 识别
func (r *LedgerReader) Read(f *excelize.File, sheet string) (*Ledger, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	headers := uniqueHeaders(rows[0])
	cols, warnings := r.columns.Resolve(headers)

	ledger := &Ledger{
		Sheet:    sheet,
		Headers:  headers,
		Columns:  cols,
		Warnings: warnings,
	}

	for idx := 1; idx < len(rows); idx++ {
		row := rows[idx]
		if isBlankRow(row) {
			continue
		}
		rowNo := idx + 1

		e := &model.Entry{
			RowNo:   rowNo,
			Fields:  make(map[string]string, len(headers)),
			Headers: headers,
		}
		for i, h := range headers {
			e.Fields[h] = cell(row, i)
			if e.Fields[h] == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(i+1, rowNo)
			if err != nil {
				continue
			}
			if v, ok := TypedValue(f, sheet, axis); ok {
				if e.Values == nil {
					e.Values = make(map[string]interface{})
				}
				e.Values[h] = v
			}
		}
		e.RawLabel = cell(row, cols.Label)
		e.Type = cell(row, cols.Type)

		if cols.PreSplit() {
			e.Received = amountAt(f, sheet, row, cols.Received, rowNo)
			e.Paid = amountAt(f, sheet, row, cols.Paid, rowNo).Abs()
			e.Amount = e.Received.Sub(e.Paid)
		} else {
			e.Amount = amountAt(f, sheet, row, cols.Amount, rowNo)
			e.Received, e.Paid = Classify(e.Type, e.Amount)
		}

		ledger.Entries = append(ledger.Entries, e)
	}

	return ledger, nil
}

// amountAt 数值单元格直接取原始值；文本单元格按巴西格式解析
func amountAt(f *excelize.File, sheet string, row []string, col, rowNo int) decimal.Decimal {
	if col < 0 {
		return decimal.Zero
	}
	text := cell(row, col)
	axis, err := excelize.CoordinatesToCellName(col+1, rowNo)
	if err != nil {
		return ParseAmount(text)
	}
	typ, err := f.GetCellType(sheet, axis)
	if err == nil && (typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset) {
		raw, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		if err == nil {
			if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
				return d
			}
		}
	}
	return ParseAmount(text)
}

// TypedValue 数值单元格的原始值：日期格式返回 time.Time，其余返回 float64
//
// 文本单元格返回 false，由调用方按文本处理。
func TypedValue(f *excelize.File, sheet, axis string) (interface{}, bool) {
	typ, err := f.GetCellType(sheet, axis)
	if err != nil || (typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset) {
		return nil, false
	}
	raw, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, false
	}
	if isDateCell(f, sheet, axis) {
		if t, err := excelize.ExcelDateToTime(n, false); err == nil {
			return t, true
		}
	}
	return n, true
}

func isDateCell(f *excelize.File, sheet, axis string) bool {
	idx, err := f.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	style, err := f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}
	// 内置日期/时间格式
	return (style.NumFmt >= 14 && style.NumFmt <= 22) || (style.NumFmt >= 45 && style.NumFmt <= 47)
}

// isDateFormat 自定义格式去掉 [..] 与引号段后含 y/d 即视为日期
func isDateFormat(code string) bool {
	var b strings.Builder
	skip := rune(0)
	for _, r := range strings.ToLower(code) {
		switch {
		case skip != 0:
			if r == skip {
				skip = 0
			}
		case r == '[':
			skip = ']'
		case r == '"':
			skip = '"'
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "yd")
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
