package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/VaazzDan/projeto-bi/internal/sample"
)

// sampleCmd 生成示例台账
type sampleCmd struct {
	out  string
	rows int
	seed int64
}

func (*sampleCmd) Name() string     { return "sample" }
func (*sampleCmd) Synopsis() string { return "gera uma planilha financeira de exemplo" }
func (*sampleCmd) Usage() string {
	return `projuris sample [-out <planilha>] [-rows <n>] [-seed <n>]

  Gera lançamentos fictícios com variações de escrita das turmas.
`
}

func (c *sampleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", "financeiro_bruto.xlsx", "Arquivo a gerar.")
	f.IntVar(&c.rows, "rows", 450, "Número de lançamentos.")
	f.Int64Var(&c.seed, "seed", 42, "Semente do gerador.")
}

func (c *sampleCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	n, err := sample.WriteWorkbook(c.out, sample.Options{Rows: c.rows, Seed: c.seed})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d lançamentos gravados em %s\n", n, c.out)
	return subcommands.ExitSuccess
}
