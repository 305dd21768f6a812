package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/VaazzDan/projeto-bi/internal/calculator"
	"github.com/VaazzDan/projeto-bi/internal/exporter"
	"github.com/VaazzDan/projeto-bi/internal/mapping"
	"github.com/VaazzDan/projeto-bi/internal/report"
)

// auditCmd 列出结果中 Turma 不在映射表里的行
type auditCmd struct {
	in    string
	limit int
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "audita a qualidade do mapeamento de turmas" }
func (*auditCmd) Usage() string {
	return `projuris audit [-in <resultado>] [-limit <n>]

  Compara a coluna Turma_Padronizada do resultado com o mapeamento
  De/Para e lista as linhas pendentes de revisão.
`
}

func (c *auditCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "Arquivo de resultado. Padrão: data.output_file do config.toml.")
	f.IntVar(&c.limit, "limit", 20, "Número máximo de linhas pendentes exibidas.")
}

func (c *auditCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	env, err := openEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}
	defer env.Close()

	res, err := exporter.ReadResult(env.path(c.in, env.cfg.Data.OutputFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}
	audit, err := auditResult(env.mappings, res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(auditMarkdown(audit, c.limit))
	return subcommands.ExitSuccess
}

func auditResult(mappings mapping.Store, res *exporter.Result) (*calculator.AuditResult, error) {
	_, index, err := mappings.Load()
	if err != nil {
		return nil, err
	}
	audit := calculator.Audit(res.Entries, calculator.NewLabelSet(index))
	return &audit, nil
}

func auditMarkdown(audit *calculator.AuditResult, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Auditoria de mapeamento\n\n")
	fmt.Fprintf(&b, "- Linhas: %d\n- Pendentes: %d\n- Qualidade: %s%%\n", audit.Total, len(audit.Pending), audit.Quality.StringFixed(1))
	if len(audit.Pending) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "\n| Linha | Turma original | Turma padronizada |\n|---:|---|---|\n")
	for i, e := range audit.Pending {
		if limit > 0 && i >= limit {
			fmt.Fprintf(&b, "\n… e mais %d linhas\n", len(audit.Pending)-limit)
			break
		}
		fmt.Fprintf(&b, "| %d | %s | %s |\n", e.RowNo, report.EscapeCell(e.RawLabel), report.EscapeCell(e.Cohort))
	}
	return b.String()
}
