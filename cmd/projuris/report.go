package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/VaazzDan/projeto-bi/internal/calculator"
	"github.com/VaazzDan/projeto-bi/internal/exporter"
	"github.com/VaazzDan/projeto-bi/internal/report"
)

// reportCmd 由结果文件生成财务报告
type reportCmd struct {
	in      string
	cohorts string
	format  string
	out     string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "gera o relatório financeiro por turma" }
func (*reportCmd) Usage() string {
	return `projuris report [-in <resultado>] [-turmas a,b] [-format term|md|html] [-o <arquivo>]

  Resume receitas, despesas e margens por turma padronizada.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "Arquivo de resultado. Padrão: data.output_file do config.toml.")
	f.StringVar(&c.cohorts, "turmas", "", "Turmas a incluir, separadas por vírgula. Padrão: todas.")
	f.StringVar(&c.format, "format", "term", "Formato: term, md ou html.")
	f.StringVar(&c.out, "o", "", "Grava o relatório neste arquivo em vez de imprimir.")
}

func (c *reportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch c.format {
	case "term", "md", "html":
	default:
		fmt.Fprintf(os.Stderr, "Erro: formato desconhecido %q\n", c.format)
		return subcommands.ExitUsageError
	}

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
	entries := calculator.Filter(res.Entries, splitList(c.cohorts))
	audit, err := auditResult(env.mappings, &exporter.Result{Headers: res.Headers, Entries: entries})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}

	md, err := report.Markdown(calculator.Summarize(entries), audit, report.Options{
		Currency: env.cfg.Report.Currency,
		TopN:     env.cfg.Report.TopN,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}

	output := md
	switch c.format {
	case "html":
		if output, err = report.HTMLPage(md); err != nil {
			fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
			return subcommands.ExitFailure
		}
	case "term":
		if c.out == "" {
			printMarkdown(md)
			return subcommands.ExitSuccess
		}
	}

	if c.out == "" {
		fmt.Print(output)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.out, []byte(output), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Relatório gravado em %s\n", c.out)
	return subcommands.ExitSuccess
}
