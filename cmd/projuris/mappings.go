package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/VaazzDan/projeto-bi/internal/mapping"
	"github.com/VaazzDan/projeto-bi/internal/normalize"
	"github.com/VaazzDan/projeto-bi/internal/report"
)

// mappingsCmd 查看映射表
type mappingsCmd struct {
	id string
}

func (*mappingsCmd) Name() string     { return "mappings" }
func (*mappingsCmd) Synopsis() string { return "lista o mapeamento De/Para" }
func (*mappingsCmd) Usage() string {
	return `projuris mappings [-id <ID>]

  Lista as linhas do mapeamento De/Para e o rótulo canônico de cada ID.
`
}

func (c *mappingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Mostra apenas as linhas deste ID.")
}

func (c *mappingsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	env, err := openEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}
	defer env.Close()

	table, index, err := env.mappings.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(mappingsMarkdown(table, index, c.id))
	return subcommands.ExitSuccess
}

func mappingsMarkdown(table mapping.Table, index map[string]string, id string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Mapeamento De/Para\n\n%d linhas, %d IDs\n\n", table.Len(), len(index))
	fmt.Fprintf(&b, "| ID | De | Para | Canônico |\n|---|---|---|---|\n")
	for _, p := range table.Rows {
		rowID, _ := normalize.ExtractLeadingID(p.De)
		if id != "" && rowID != id {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", rowID, report.EscapeCell(p.De), report.EscapeCell(p.Para), report.EscapeCell(index[rowID]))
	}
	return b.String()
}
