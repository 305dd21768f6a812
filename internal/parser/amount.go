package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// 只含点号时按千分位解析的形式：1.200 / -12.345.678
var reThousands = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)

var amountCleaner = strings.NewReplacer("R$", "", " ", "", "\u00a0", "")

// ParseAmount 解析巴西格式金额；空值或无法解析时返回 0
//
//	"R$ 1.500,50" -> 1500.50
//	"1.200"       -> 1200
//	"2500"        -> 2500
//	"12,5"        -> 12.5
func ParseAmount(v string) decimal.Decimal {
	s := amountCleaner.Replace(strings.TrimSpace(v))
	if s == "" {
		return decimal.Zero
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	case hasDot && reThousands.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Classify 按 Tipo 列拆分收入/支出（支出总是非负）
//
// Tipo 含 "recebido" 记为收入；含 "pago" 记为支出；否则按金额正负判断。
func Classify(typ string, amount decimal.Decimal) (received, paid decimal.Decimal) {
	t := strings.ToLower(typ)
	switch {
	case strings.Contains(t, "recebido"):
		return amount, decimal.Zero
	case strings.Contains(t, "pago"):
		return decimal.Zero, amount.Abs()
	case amount.IsPositive():
		return amount, decimal.Zero
	default:
		return decimal.Zero, amount.Abs()
	}
}
