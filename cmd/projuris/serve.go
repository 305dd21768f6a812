package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"github.com/VaazzDan/projeto-bi/internal/config"
	"github.com/VaazzDan/projeto-bi/internal/logging"
	"github.com/VaazzDan/projeto-bi/internal/server"
	"github.com/VaazzDan/projeto-bi/internal/util"
)

// serveCmd 启动 Web 界面
type serveCmd struct {
	port      int
	dev       bool
	dataDir   string
	noBrowser bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "inicia a interface web" }
func (*serveCmd) Usage() string {
	return `projuris serve [-port <n>] [-dev] [-dataDir <dir>] [-no-browser]

  Inicia o servidor HTTP com upload, painel por turma, auditoria
  e editor do mapeamento.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Porta (config.toml tem prioridade quando define server.port).")
	f.BoolVar(&c.dev, "dev", false, "Modo de desenvolvimento.")
	f.StringVar(&c.dataDir, "dataDir", "", "Diretório de dados (sobrepõe o config.toml).")
	f.BoolVar(&c.noBrowser, "no-browser", false, "Não abre o navegador.")
}

func (c *serveCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, info, err := config.LoadConfigFrom(configFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Falha ao carregar configuração, usando padrão: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if c.port > 0 && !info.PortSpecified {
		cfg.Server.Port = c.port
	}
	if c.dev {
		cfg.Server.DevMode = true
	}
	if c.dataDir != "" {
		cfg.Data.DataDir = c.dataDir
	}

	logger := logging.New(cfg.Log, os.Stderr)
	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}
	defer srv.Close()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Servidor ouvindo na porta %d ...\n", cfg.Server.Port)
		errCh <- srv.Run(addr)
	}()

	if !c.noBrowser && !cfg.Server.DevMode {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("Não foi possível abrir o navegador, acesse: %s\n", url)
		}
	} else {
		fmt.Printf("Acesse %s\n", url)
	}
	fmt.Println("Pressione Ctrl+C para encerrar.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		fmt.Println("\nEncerrando...")
		return subcommands.ExitSuccess
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		return subcommands.ExitFailure
	}
}
