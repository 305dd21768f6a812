package model

import "github.com/shopspring/decimal"

// Entry 台账中的一行（收支流水）
type Entry struct {
	RowNo int `json:"rowNo"` // Excel 行号（表头为第 1 行）

	// 原始列（表头 -> 单元格文本），按 Headers 顺序写回
	Fields  map[string]string `json:"fields"`
	Headers []string          `json:"-"`

	// 原始为数值/日期的单元格（float64 或 time.Time），写回时保持类型
	Values map[string]interface{} `json:"-"`

	RawLabel string          `json:"rawLabel"`
	Amount   decimal.Decimal `json:"amount"`
	Type     string          `json:"type,omitempty"`

	Received decimal.Decimal `json:"received"` // Recebido
	Paid     decimal.Decimal `json:"paid"`     // Pago（非负）

	Cohort string `json:"cohort"` // Turma_Padronizada
}

// Profit 该行对利润的贡献
func (e *Entry) Profit() decimal.Decimal {
	return e.Received.Sub(e.Paid)
}

// Field 读取原始列
func (e *Entry) Field(header string) string {
	if e.Fields == nil {
		return ""
	}
	return e.Fields[header]
}

// Value 写回用的单元格值：有类型值时优先，否则为文本
func (e *Entry) Value(header string) interface{} {
	if v, ok := e.Values[header]; ok {
		return v
	}
	return e.Field(header)
}
