package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/VaazzDan/projeto-bi/internal/importer"
	"github.com/VaazzDan/projeto-bi/internal/report"
)

// runCmd 处理台账：解析 Turma、写出结果并回写映射表
type runCmd struct {
	in    string
	out   string
	sheet string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "padroniza as turmas de uma planilha financeira" }
func (*runCmd) Usage() string {
	return `projuris run [-in <planilha>] [-out <resultado>] [-sheet <aba>]

  Lê a planilha bruta, padroniza a coluna de turma pelo ID inicial,
  grava o resultado com Recebido/Pago/Turma_Padronizada e atualiza
  o mapeamento De/Para com os IDs novos.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "Planilha bruta. Padrão: data.ledger_file do config.toml.")
	f.StringVar(&c.out, "out", "", "Arquivo de resultado. Padrão: data.output_file do config.toml.")
	f.StringVar(&c.sheet, "sheet", "", "Aba a processar. Padrão: a primeira.")
}

func (c *runCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	env, err := openEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}
	defer env.Close()

	coordinator := importer.NewCoordinator(env.mappings, env.store, env.cfg.Columns, env.logger)
	rep, err := coordinator.RunSync(importer.RunOptions{
		LedgerPath: env.path(c.in, env.cfg.Data.LedgerFile),
		Sheet:      c.sheet,
		OutputPath: env.path(c.out, env.cfg.Data.OutputFile),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(runMarkdown(rep, env.cfg.Report.Currency))
	return subcommands.ExitSuccess
}

func runMarkdown(rep *importer.RunReport, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Processamento concluído\n\n")
	fmt.Fprintf(&b, "| | |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Aba | %s |\n", report.EscapeCell(rep.Sheet))
	fmt.Fprintf(&b, "| Linhas | %d |\n", rep.Rows)
	fmt.Fprintf(&b, "| IDs novos | %d |\n", rep.Discovered)
	fmt.Fprintf(&b, "| Não informados | %d |\n", rep.NotInformed)
	fmt.Fprintf(&b, "| Qualidade | %s%% |\n", rep.Quality.StringFixed(1))
	fmt.Fprintf(&b, "| Margem líquida | %s |\n", report.FormatMoney(rep.Totals.Profit, currency))
	if rep.Reconciled {
		fmt.Fprintf(&b, "| Conciliação | ok |\n")
	} else {
		fmt.Fprintf(&b, "| Conciliação | divergência de %s |\n", report.FormatMoney(rep.ReconcileDiff, currency))
	}

	if len(rep.NewMappings) > 0 {
		fmt.Fprintf(&b, "\n## Novos mapeamentos\n\n| De | Para |\n|---|---|\n")
		for _, p := range rep.NewMappings {
			fmt.Fprintf(&b, "| %s | %s |\n", report.EscapeCell(p.De), report.EscapeCell(p.Para))
		}
	}
	if len(rep.Warnings) > 0 {
		fmt.Fprintf(&b, "\n## Avisos\n\n")
		for _, w := range rep.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	fmt.Fprintf(&b, "\nResultado: `%s`\n", rep.OutputFile)
	return b.String()
}
