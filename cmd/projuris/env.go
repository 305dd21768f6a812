package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/VaazzDan/projeto-bi/internal/config"
	"github.com/VaazzDan/projeto-bi/internal/logging"
	"github.com/VaazzDan/projeto-bi/internal/mapping"
	"github.com/VaazzDan/projeto-bi/internal/report"
	"github.com/VaazzDan/projeto-bi/internal/store"
)

var configPath = flag.String("config", "", "Caminho do config.toml (padrão: ao lado do executável)")

// appEnv 配置、数据目录与存储，供各子命令共享
type appEnv struct {
	cfg      *config.AppConfig
	dataDir  string
	logger   *slog.Logger
	store    *store.Store
	mappings mapping.EditableStore
}

func configFile() string {
	if *configPath != "" {
		return *configPath
	}
	return config.DefaultConfigPath()
}

// openEnv 打开数据目录、SQLite 与映射表存储
func openEnv() (*appEnv, error) {
	cfg, _, err := config.LoadConfigFrom(configFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return openEnvWith(cfg)
}

func openEnvWith(cfg *config.AppConfig) (*appEnv, error) {
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data dir: %w", err)
	}
	logger := logging.New(cfg.Log, os.Stderr)

	st, err := store.New(config.ResolvePath(dataDir, cfg.Data.DBFile))
	if err != nil {
		return nil, err
	}
	mappings, err := store.OpenMappingStore(cfg.Mapping.Backend, config.ResolvePath(dataDir, cfg.Data.MappingFile), st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return &appEnv{cfg: cfg, dataDir: dataDir, logger: logger, store: st, mappings: mappings}, nil
}

func (e *appEnv) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("failed to close database", "error", err)
	}
}

// path 相对路径基于数据目录；空值使用 fallback
func (e *appEnv) path(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	return config.ResolvePath(e.dataDir, name)
}

// splitList 解析逗号分隔的列表
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// printMarkdown 在终端渲染 Markdown；渲染失败时原样输出
func printMarkdown(md string) {
	out, err := report.Terminal(md, "", 100)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
