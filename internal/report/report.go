package report

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/VaazzDan/projeto-bi/internal/calculator"
	"github.com/VaazzDan/projeto-bi/internal/model"
)

//go:embed templates/*.md
var templatesFS embed.FS

// Options 报告选项
type Options struct {
	Currency string
	TopN     int
	Now      func() time.Time
}

// Data 模板数据
type Data struct {
	GeneratedAt string
	Diagnosis   string
	Totals      calculator.Totals
	HasCohorts  bool
	Best        model.CohortTotals
	Worst       model.CohortTotals
	Top         []model.CohortTotals
	Audit       *calculator.AuditResult
}

// Markdown 生成 Markdown 报告；audit 可为 nil
func Markdown(s calculator.Summary, audit *calculator.AuditResult, opts Options) (string, error) {
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	data := Data{
		GeneratedAt: now().Format("02/01/2006 15:04"),
		Totals:      s.Totals,
		Top:         s.Top(opts.TopN),
		Audit:       audit,
	}
	data.Best, data.HasCohorts = s.Best()
	data.Worst, _ = s.Worst()
	data.Diagnosis = diagnosis(s.Totals, opts.Currency)

	tmpl, err := template.New("report.md").Funcs(template.FuncMap{
		"money": func(v decimal.Decimal) string {
			return FormatMoney(v, opts.Currency)
		},
		"inc":  func(i int) int { return i + 1 },
		"cell": EscapeCell,
	}).ParseFS(templatesFS, "templates/report.md")
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

func diagnosis(t calculator.Totals, currency string) string {
	if t.Rows == 0 {
		return "Nenhuma linha processada."
	}
	roi := "sem despesas registradas"
	if t.HasROI {
		roi = "com ROI de " + t.ROI.StringFixed(2) + "x"
	}
	return fmt.Sprintf("A margem líquida total é de %s, %s.", FormatMoney(t.Profit, currency), roi)
}

// HTML 将 Markdown 转为 HTML 片段（GFM 表格）
func HTML(md string) (string, error) {
	conv := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := conv.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to convert report to html: %w", err)
	}
	return buf.String(), nil
}

// HTMLPage 完整 HTML 页面
func HTMLPage(md string) (string, error) {
	body, err := HTML(md)
	if err != nil {
		return "", err
	}
	return `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Relatório Financeiro</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; color: #222; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ddd; padding: 4px 10px; }
h1, h2 { color: #eb5283; }
</style>
</head>
<body>
` + body + `</body>
</html>
`, nil
}

// Terminal 用 glamour 渲染到终端；style 为空时自动检测
func Terminal(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}
