package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, info, err := LoadConfigFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if info.FileFound || info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Mapping.Backend != BackendXLSX || cfg.Data.MappingFile != "mapeamento_termos.xlsx" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Columns.LabelCandidates) != 1 || cfg.Columns.LabelCandidates[0] != "Nº Controle 1" {
		t.Fatalf("unexpected label candidates: %v", cfg.Columns.LabelCandidates)
	}
}

func TestLoadConfigFrom_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9090

[mapping]
backend = "sqlite"

[columns]
label_keywords = ["TURMA"]
label_candidates = []

[log]
level = "warn"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("PROJURIS_MAPPING_FILE", "/tmp/outro.xlsx")
	t.Setenv("PROJURIS_LOG_LEVEL", "debug")

	cfg, info, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if !info.FileFound || !info.PortSpecified || cfg.Server.Port != 9090 {
		t.Fatalf("port not loaded: %+v %+v", info, cfg.Server)
	}
	if cfg.Mapping.Backend != BackendSQLite {
		t.Fatalf("backend=%q", cfg.Mapping.Backend)
	}
	if len(cfg.Columns.LabelKeywords) != 1 || cfg.Columns.LabelKeywords[0] != "TURMA" {
		t.Fatalf("keywords=%v", cfg.Columns.LabelKeywords)
	}
	if len(cfg.Columns.LabelCandidates) != 1 {
		t.Fatalf("empty candidates must fall back to defaults: %v", cfg.Columns.LabelCandidates)
	}
	if cfg.Data.MappingFile != "/tmp/outro.xlsx" || cfg.Log.Level != "debug" {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Data, cfg.Log)
	}
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	if got := ResolvePath("/data", "a.xlsx"); got != filepath.Join("/data", "a.xlsx") {
		t.Fatalf("got %q", got)
	}
	if got := ResolvePath("/data", "/abs/a.xlsx"); got != "/abs/a.xlsx" {
		t.Fatalf("got %q", got)
	}
	if got := ResolvePath("/data", ""); got != "" {
		t.Fatalf("got %q", got)
	}
}
