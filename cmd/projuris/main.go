package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&runCmd{}, "processamento")
	commander.Register(&auditCmd{}, "processamento")
	commander.Register(&reportCmd{}, "processamento")
	commander.Register(&mappingsCmd{}, "mapeamento")
	commander.Register(&sampleCmd{}, "dados")
	commander.Register(&serveCmd{}, "servidor")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
