package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"importacao/internal/classifier"
	"importacao/internal/sheets"
	"importacao/internal/source"
)

// AppConfig 应用配置
type AppConfig struct {
	Server    ServerConfig       `toml:"server"`
	Source    SourceConfig       `toml:"source"`
	Tabs      []TabConfig        `toml:"tabs"`
	Columns   classifier.Columns `toml:"columns"`
	Dashboard DashboardConfig    `toml:"dashboard"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// SourceConfig 数据源配置
type SourceConfig struct {
	Kind            string `toml:"kind"` // sheets / xlsx / xls / csv / sqlite
	SpreadsheetID   string `toml:"spreadsheet_id"`
	CredentialsFile string `toml:"credentials_file"`
	TokenFile       string `toml:"token_file"`
	Path            string `toml:"path"`
	Encoding        string `toml:"encoding"`
	Delimiter       string `toml:"delimiter"`
}

// TabConfig 一个需要加载的 aba；Pending 为 true 时额外计算“com Pendências”分类
type TabConfig struct {
	Name    string `toml:"name"`
	Color   string `toml:"color"`
	Pending bool   `toml:"pending"`
}

// DashboardConfig 页面文案与待处理分类
type DashboardConfig struct {
	Title        string `toml:"title"`
	PendingLabel string `toml:"pending_label"`
	PendingColor string `toml:"pending_color"`
	ChartTitle   string `toml:"chart_title"`
	Footer       string `toml:"footer"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    8501,
			DevMode: false,
		},
		Source: SourceConfig{
			Kind:            string(source.KindSheets),
			SpreadsheetID:   "",
			CredentialsFile: "client_secret.json",
			TokenFile:       "token.json",
			Encoding:        "utf-8",
			Delimiter:       ",",
		},
		Tabs: []TabConfig{
			{Name: "SERVIDORES", Color: "blue", Pending: true},
			{Name: "ESTAGIÁRIOS", Color: "orange"},
			{Name: "ESTAGIÁRIOS NOVOS", Color: "green"},
		},
		Columns: classifier.DefaultColumns(),
		Dashboard: DashboardConfig{
			Title:        "Servidores para Importação TJPI",
			PendingLabel: "Servidores com Pendências",
			PendingColor: "red",
			ChartTitle:   "Importações por Categoria",
			Footer:       "Desenvolvido pela Secretaria de Tecnologia da Informação e Comunicação - STIC",
		},
	}
}

// TabNames 配置的 aba 名称（声明顺序）
func (c *AppConfig) TabNames() []string {
	out := make([]string, 0, len(c.Tabs))
	for _, t := range c.Tabs {
		out = append(out, t.Name)
	}
	return out
}

// SourceOptions 转换为数据源参数（相对路径以配置文件目录为基准）
func (c *AppConfig) SourceOptions(baseDir string) source.Options {
	return source.Options{
		Kind:            source.Kind(c.Source.Kind),
		SpreadsheetID:   c.Source.SpreadsheetID,
		CredentialsFile: resolvePath(baseDir, c.Source.CredentialsFile),
		TokenFile:       resolvePath(baseDir, c.Source.TokenFile),
		Path:            resolvePath(baseDir, c.Source.Path),
		Encoding:        c.Source.Encoding,
		Delimiter:       c.Source.Delimiter,
	}
}

// Validate 检查必需项
func (c *AppConfig) Validate() error {
	if len(c.Tabs) == 0 {
		return errors.New("nenhuma aba configurada em [[tabs]]")
	}
	seen := make(map[string]string, len(c.Tabs))
	for _, name := range c.TabNames() {
		if strings.TrimSpace(name) == "" {
			return errors.New("aba com nome vazio em [[tabs]]")
		}
		// 只差大小写或空白的两个名称会解析到同一个 aba
		key := sheets.NormalizeName(name)
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("abas duplicadas em [[tabs]]: %q e %q", prev, name)
		}
		seen[key] = name
	}
	switch source.Kind(strings.ToLower(c.Source.Kind)) {
	case source.KindSheets, "":
		if strings.TrimSpace(c.Source.SpreadsheetID) == "" {
			return errors.New("source.spreadsheet_id é obrigatório para a fonte sheets")
		}
	case source.KindXLSX, source.KindXLS, source.KindCSV, source.KindSQLite:
		if strings.TrimSpace(c.Source.Path) == "" {
			return errors.New("source.path é obrigatório para a fonte " + c.Source.Kind)
		}
	default:
		return errors.New("source.kind desconhecido: " + c.Source.Kind)
	}
	return nil
}

func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
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

// DefaultConfigPath 可执行文件同目录下的 config.toml；不存在时退回当前目录
func DefaultConfigPath() string {
	if exeDir, err := GetExeDir(); err == nil {
		p := filepath.Join(exeDir, "config.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "config.toml"
}

// LoadConfigWithInfo 加载 .env 与 config.toml，再应用环境变量覆盖
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	// .env 可选；已存在的环境变量不会被覆盖
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, info, err
		}
	} else {
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)

		var fileCfg AppConfig
		if err := toml.Unmarshal(data, &fileCfg); err != nil {
			return nil, info, err
		}
		merge(config, &fileCfg)
	}

	applyEnv(config)
	return config, info, nil
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(path string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// merge 文件中出现的值覆盖默认值；[[tabs]] 整体替换
func merge(dst, src *AppConfig) {
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	dst.Server.DevMode = dst.Server.DevMode || src.Server.DevMode

	setString(&dst.Source.Kind, src.Source.Kind)
	setString(&dst.Source.SpreadsheetID, src.Source.SpreadsheetID)
	setString(&dst.Source.CredentialsFile, src.Source.CredentialsFile)
	setString(&dst.Source.TokenFile, src.Source.TokenFile)
	setString(&dst.Source.Path, src.Source.Path)
	setString(&dst.Source.Encoding, src.Source.Encoding)
	setString(&dst.Source.Delimiter, src.Source.Delimiter)

	if len(src.Tabs) > 0 {
		dst.Tabs = src.Tabs
	}

	setString(&dst.Columns.Pendencia, src.Columns.Pendencia)
	setString(&dst.Columns.Resolvido, src.Columns.Resolvido)

	setString(&dst.Dashboard.Title, src.Dashboard.Title)
	setString(&dst.Dashboard.PendingLabel, src.Dashboard.PendingLabel)
	setString(&dst.Dashboard.PendingColor, src.Dashboard.PendingColor)
	setString(&dst.Dashboard.ChartTitle, src.Dashboard.ChartTitle)
	setString(&dst.Dashboard.Footer, src.Dashboard.Footer)
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// applyEnv 环境变量覆盖（.env 中的值也经由这里生效）
func applyEnv(config *AppConfig) {
	setString(&config.Source.Kind, os.Getenv("IMPORTACAO_SOURCE_KIND"))
	setString(&config.Source.SpreadsheetID, os.Getenv("IMPORTACAO_SPREADSHEET_ID"))
	setString(&config.Source.Path, os.Getenv("IMPORTACAO_SOURCE_PATH"))
	setString(&config.Source.CredentialsFile, os.Getenv("IMPORTACAO_CREDENTIALS_FILE"))
	setString(&config.Source.TokenFile, os.Getenv("IMPORTACAO_TOKEN_FILE"))
}
