package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"importacao/internal/auth"
	"importacao/internal/config"
	"importacao/internal/exporter"
	"importacao/internal/importer"
	"importacao/internal/server"
	"importacao/internal/source"
	"importacao/internal/termview"
	"importacao/internal/util"
)

var (
	configPath    string
	sourceKind    string
	spreadsheetID string
	sourcePath    string

	port    int
	devMode bool
	open    bool

	exportPath string
	force      bool

	cfg     *config.AppConfig
	cfgInfo config.LoadConfigInfo
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "importacao",
		Short: "Painel de servidores para importação",
		Long: `importacao lê as abas configuradas de uma planilha (Google Sheets, xlsx, xls,
csv ou sqlite), classifica os registros pelas colunas Pendência / Resolvido?
e apresenta as tabelas e o gráfico de importações.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Arquivo config.toml (padrão: ao lado do executável)")
	rootCmd.PersistentFlags().StringVar(&sourceKind, "source", "", "Tipo de fonte: sheets, xlsx, xls, csv, sqlite")
	rootCmd.PersistentFlags().StringVar(&spreadsheetID, "spreadsheet", "", "ID da planilha do Google Sheets")
	rootCmd.PersistentFlags().StringVar(&sourcePath, "path", "", "Arquivo (xlsx/xls/sqlite) ou diretório (csv) da fonte")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Inicia o painel web",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&port, "port", 0, "Porta HTTP (sobrepõe config.toml)")
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "Modo de desenvolvimento")
	serveCmd.Flags().BoolVar(&open, "open", false, "Abre o navegador ao iniciar")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Executa uma carga e mostra o resumo no terminal",
		RunE:  runCheck,
	}
	checkCmd.Flags().StringVarP(&exportPath, "export", "o", "", "Grava também a planilha de importações (.xlsx)")

	tabsCmd := &cobra.Command{
		Use:   "tabs",
		Short: "Lista as abas da fonte e a resolução dos nomes configurados",
		RunE:  runTabs,
	}

	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Autoriza o acesso ao Google Sheets e grava token.json",
		RunE:  runAuth,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Grava config.toml com a configuração atual (padrões + flags)",
		RunE:  runInit,
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Sobrescreve um config.toml existente")

	rootCmd.AddCommand(serveCmd, checkCmd, tabsCmd, authCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 配置优先级：默认值 < config.toml < .env / 环境变量 < 命令行参数
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, info, err := config.LoadConfigWithInfo(configPath)
	if err != nil {
		return fmt.Errorf("carregar configuração %s: %w", info.Path, err)
	}
	if info.FileFound {
		log.Printf("[config] %s", info.Path)
	} else {
		log.Printf("[config] %s não encontrado, usando padrões", info.Path)
	}

	if sourceKind != "" {
		loaded.Source.Kind = sourceKind
	}
	if spreadsheetID != "" {
		loaded.Source.SpreadsheetID = spreadsheetID
	}
	if sourcePath != "" {
		loaded.Source.Path = sourcePath
	}

	cfg, cfgInfo = loaded, info
	return nil
}

func baseDir() string {
	if !cfgInfo.FileFound {
		return ""
	}
	return filepath.Dir(cfgInfo.Path)
}

// openSource 校验配置并打开数据源
func openSource(ctx context.Context) (source.Source, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuração inválida: %w", err)
	}
	src, err := source.Open(ctx, cfg.SourceOptions(baseDir()))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Printf("[source] fechar: %v", err)
			}
		}
	}
	return src, closeFn, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") && port > 0 {
		cfg.Server.Port = port
	}
	if devMode {
		cfg.Server.DevMode = true
	}

	fmt.Println("==========================================")
	fmt.Println("  " + cfg.Dashboard.Title)
	fmt.Println("==========================================")

	src, closeSource, err := openSource(cmd.Context())
	if err != nil {
		fmt.Fprintln(os.Stderr, termview.Error(err))
		return err
	}
	defer closeSource()

	listenPort := cfg.Server.Port
	if !cfgInfo.PortSpecified && !cmd.Flags().Changed("port") {
		if p, err := util.FindAvailablePort(listenPort); err == nil {
			listenPort = p
		}
	}

	srv := server.NewServer(cfg, src)
	addr := fmt.Sprintf(":%d", listenPort)
	url := util.DashboardURL(listenPort)

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Servidor iniciando na porta %d ...\n", listenPort)
		errCh <- srv.Run(addr)
	}()

	if open {
		fmt.Printf("Abrindo navegador: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("Não foi possível abrir o navegador, acesse manualmente: %s\n", url)
		}
	} else {
		fmt.Printf("Acesse %s\n", url)
	}

	fmt.Println("\nPressione Ctrl+C para encerrar...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		fmt.Println("\nEncerrando...")
		return nil
	case err := <-errCh:
		return fmt.Errorf("servidor: %w", err)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src, closeSource, err := openSource(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, termview.Error(err))
		return err
	}
	defer closeSource()

	coordinator := importer.NewCoordinator(src, importer.OptionsFromConfig(cfg))
	report, err := coordinator.Run(ctx, func(ev importer.ProgressEvent) {
		if ev.Type == importer.EventTabStart {
			log.Printf("[%3d%%] %s", ev.Percent, ev.Message)
		}
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, termview.Error(err))
		return err
	}

	fmt.Print(termview.Report(cfg.Dashboard.Title, report))

	if exportPath != "" {
		file, err := exporter.NewExporter(cfg.Dashboard.ChartTitle).Export(report)
		if err != nil {
			return fmt.Errorf("gerar planilha: %w", err)
		}
		defer file.Close()
		if err := file.SaveAs(exportPath); err != nil {
			return fmt.Errorf("gravar %s: %w", exportPath, err)
		}
		fmt.Printf("Planilha gravada em %s\n", exportPath)
	}
	return nil
}

func runTabs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src, closeSource, err := openSource(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, termview.Error(err))
		return err
	}
	defer closeSource()

	available, resolution, err := importer.NewCoordinator(src, importer.OptionsFromConfig(cfg)).ResolveTabs(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, termview.Error(err))
		return err
	}
	fmt.Print(termview.Tabs(available, resolution))
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	if cfgInfo.FileFound && !force {
		err := fmt.Errorf("%s já existe (use --force para sobrescrever)", cfgInfo.Path)
		fmt.Fprintln(os.Stderr, termview.Error(err))
		return err
	}
	if err := config.SaveConfig(cfgInfo.Path, cfg); err != nil {
		err = fmt.Errorf("gravar %s: %w", cfgInfo.Path, err)
		fmt.Fprintln(os.Stderr, termview.Error(err))
		return err
	}
	fmt.Printf("Configuração gravada em %s\n", cfgInfo.Path)
	return nil
}

func runAuth(cmd *cobra.Command, args []string) error {
	opts := cfg.SourceOptions(baseDir())
	oauthCfg, err := auth.Config(opts.CredentialsFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, termview.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Println("Abrindo a página de autorização do Google no navegador...")
	if _, err := auth.Login(ctx, oauthCfg, opts.TokenFile, func(u string) error {
		if err := util.OpenBrowserWithFallback(u); err != nil {
			fmt.Printf("Abra manualmente: %s\n", u)
		}
		return nil
	}); err != nil {
		fmt.Fprintln(os.Stderr, termview.Error(err))
		return err
	}
	fmt.Printf("Token gravado em %s\n", opts.TokenFile)
	return nil
}
