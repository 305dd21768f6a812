package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// 映射表存储后端
const (
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Mapping MappingConfig `toml:"mapping"`
	Columns ColumnsConfig `toml:"columns"`
	Report  ReportConfig  `toml:"report"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据文件配置（相对路径基于 data_dir）
type DataConfig struct {
	DataDir     string `toml:"data_dir"`
	LedgerFile  string `toml:"ledger_file"`
	OutputFile  string `toml:"output_file"`
	MappingFile string `toml:"mapping_file"`
	DBFile      string `toml:"db_file"`
}

// MappingConfig 映射表配置
type MappingConfig struct {
	Backend string `toml:"backend"`
}

// ColumnsConfig 台账列识别候选
type ColumnsConfig struct {
	LabelCandidates  []string `toml:"label_candidates"`
	LabelKeywords    []string `toml:"label_keywords"`
	AmountCandidates []string `toml:"amount_candidates"`
	TypeCandidates   []string `toml:"type_candidates"`
}

// ReportConfig 报告配置
type ReportConfig struct {
	Currency string `toml:"currency"`
	TopN     int    `toml:"top_n"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultColumns 默认列识别规则
func DefaultColumns() ColumnsConfig {
	return ColumnsConfig{
		LabelCandidates:  []string{"Nº Controle 1"},
		LabelKeywords:    []string{"CONTROLE", "CURSO", "TURMA"},
		AmountCandidates: []string{"Valor"},
		TypeCandidates:   []string{"Tipo"},
	}
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20261,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:     "data",
			LedgerFile:  "financeiro_bruto.xlsx",
			OutputFile:  "financeiro_processado.xlsx",
			MappingFile: "mapeamento_termos.xlsx",
			DBFile:      "projuris.db",
		},
		Mapping: MappingConfig{Backend: BackendXLSX},
		Columns: DefaultColumns(),
		Report: ReportConfig{
			Currency: "BRL",
			TopN:     5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath config.toml 默认位置（可执行文件同目录）
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadConfigFrom(DefaultConfigPath())
}

// LoadConfigFrom 从指定路径加载配置；文件不存在时使用默认配置
func LoadConfigFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, info, err
		}
	} else {
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	}

	applyEnv(config)
	config.fillDefaults()
	return config, info, nil
}

// 环境变量覆盖
func applyEnv(config *AppConfig) {
	if v := os.Getenv("PROJURIS_LEDGER_FILE"); v != "" {
		config.Data.LedgerFile = v
	}
	if v := os.Getenv("PROJURIS_MAPPING_FILE"); v != "" {
		config.Data.MappingFile = v
	}
	if v := os.Getenv("PROJURIS_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
}

// 配置文件里显式写了空列表时回落到默认值
func (c *AppConfig) fillDefaults() {
	def := DefaultColumns()
	if len(c.Columns.LabelCandidates) == 0 {
		c.Columns.LabelCandidates = def.LabelCandidates
	}
	if len(c.Columns.LabelKeywords) == 0 {
		c.Columns.LabelKeywords = def.LabelKeywords
	}
	if len(c.Columns.AmountCandidates) == 0 {
		c.Columns.AmountCandidates = def.AmountCandidates
	}
	if len(c.Columns.TypeCandidates) == 0 {
		c.Columns.TypeCandidates = def.TypeCandidates
	}
	if c.Mapping.Backend == "" {
		c.Mapping.Backend = BackendXLSX
	}
	if c.Report.TopN <= 0 {
		c.Report.TopN = 5
	}
	if c.Report.Currency == "" {
		c.Report.Currency = "BRL"
	}
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *AppConfig, configPath string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录存在，返回绝对路径
// 相对的 data_dir 基于可执行文件所在目录
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"uploads", "exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// ResolvePath 相对文件名基于数据目录解析
func ResolvePath(dataDir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dataDir, name)
}
