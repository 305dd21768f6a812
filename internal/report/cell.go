package report

import "strings"

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// EscapeCell 转义 GFM 表格单元格：| 转为 \|，换行折成空格
func EscapeCell(s string) string {
	return cellReplacer.Replace(s)
}
