package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney 按币种格式化金额（BRL: R$1.500,50）
func FormatMoney(value decimal.Decimal, currency string) string {
	if currency == "" {
		currency = money.BRL
	}
	// money.New 保证返回非空的 Currency
	cur := *money.New(0, currency).Currency()
	minor := value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}
