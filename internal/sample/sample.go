package sample

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/VaazzDan/projeto-bi/internal/report"
)

// Headers 示例台账表头
var Headers = []string{"Nº Controle 1", "Valor", "Tipo", "Instituicao"}

// 带 ID 的 Turma 与其书写变体
var cohortVariants = map[string][]string{
	"25016": {"25016 PSICOLOGIA UNINGA 2", "25016 Psicologia Uningá", "25016 PSICOLOGIA UNINGA 2024.1"},
	"30112": {"30112 DIREITO USP", "30112 Dir. USP 23", "30112 Direito USP 2023"},
	"41807": {"41807 ENGENHARIA CIVIL", "41807 Eng Civil", "41807 Civil 2025"},
}

// 没有 ID 的写法，解析结果应为 NÃO INFORMADO
var unidentified = []string{"Medicina 2024", "MEDICINA 24", "Med 2024"}

var cohortIDs = []string{"25016", "30112", "41807"}

// Options 生成选项
type Options struct {
	Rows int
	Seed int64
}

// Generate 生成示例台账行（不含表头），相同 Seed 结果相同
func Generate(opts Options) [][]interface{} {
	if opts.Rows <= 0 {
		opts.Rows = 450
	}
	faker := gofakeit.New(opts.Seed)
	institutions := []string{faker.Company(), faker.Company(), "Universidade A"}

	rows := make([][]interface{}, 0, opts.Rows)
	for i := 0; i < opts.Rows; i++ {
		var label string
		if faker.Number(1, 10) <= 2 {
			label = faker.RandomString(unidentified)
		} else {
			label = faker.RandomString(cohortVariants[faker.RandomString(cohortIDs)])
		}

		received := faker.Bool()
		amount := decimal.NewFromFloat(faker.Float64Range(2000, 15000)).Round(2)
		typ := "Recebido"
		if !received {
			typ = "Pago"
			if faker.Bool() {
				amount = amount.Neg()
			}
		}

		// 金额有时是文本（R$1.234,56），有时是数值
		var value interface{} = amount.InexactFloat64()
		if faker.Bool() {
			value = report.FormatMoney(amount, "BRL")
		}

		rows = append(rows, []interface{}{label, value, typ, faker.RandomString(institutions)})
	}
	return rows
}

// WriteWorkbook 写出示例台账工作簿
func WriteWorkbook(path string, opts Options) (int, error) {
	rows := Generate(opts)

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		return 0, fmt.Errorf("failed to write sample header: %w", err)
	}
	for i, r := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		row := r
		if err := f.SetSheetRow("Sheet1", axis, &row); err != nil {
			return 0, fmt.Errorf("failed to write sample row %d: %w", i+2, err)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create sample directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("failed to save sample: %w", err)
	}
	return len(rows), nil
}
