// Package importer 执行一次完整的导入看板运行：列出 aba、解析名称、逐个读取并分类。
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"importacao/internal/classifier"
	"importacao/internal/config"
	"importacao/internal/model"
	"importacao/internal/sheets"
	"importacao/internal/source"
)

// ErrEmptyResultSet 没有任何 aba 可用（全部未找到、全部读取失败或全部没有记录）
var ErrEmptyResultSet = errors.New("empty result set")

// TabSpec 一个需要加载的 aba
type TabSpec struct {
	Name    string
	Color   string
	Pending bool // 额外展示“com Pendências”分类
}

// Options 运行参数
type Options struct {
	Tabs         []TabSpec
	Columns      classifier.Columns
	PendingLabel string
	PendingColor string
}

// OptionsFromConfig 从应用配置构造运行参数
func OptionsFromConfig(cfg *config.AppConfig) Options {
	tabs := make([]TabSpec, 0, len(cfg.Tabs))
	for _, t := range cfg.Tabs {
		tabs = append(tabs, TabSpec{Name: t.Name, Color: t.Color, Pending: t.Pending})
	}
	return Options{
		Tabs:         tabs,
		Columns:      cfg.Columns,
		PendingLabel: cfg.Dashboard.PendingLabel,
		PendingColor: cfg.Dashboard.PendingColor,
	}
}

// Coordinator 导入协调器
type Coordinator struct {
	source source.Source
	opts   Options
}

// NewCoordinator 创建导入协调器
func NewCoordinator(src source.Source, opts Options) *Coordinator {
	if opts.PendingLabel == "" {
		opts.PendingLabel = "Servidores com Pendências"
	}
	if opts.PendingColor == "" {
		opts.PendingColor = "red"
	}
	return &Coordinator{source: src, opts: opts}
}

// DesiredTabs 配置的 aba 名称
func (c *Coordinator) DesiredTabs() []string {
	out := make([]string, 0, len(c.opts.Tabs))
	for _, t := range c.opts.Tabs {
		out = append(out, t.Name)
	}
	return out
}

// ResolveTabs 只做列出与解析，不读取记录
func (c *Coordinator) ResolveTabs(ctx context.Context) ([]string, model.Resolution, error) {
	available, err := c.source.ListTabs(ctx)
	if err != nil {
		return nil, model.Resolution{}, fmt.Errorf("listar abas: %w", err)
	}
	return available, sheets.Resolve(c.DesiredTabs(), available), nil
}

// Run 同步执行一次运行；progress 在调用方 goroutine 中回调，可为 nil
func (c *Coordinator) Run(ctx context.Context, progress func(ProgressEvent)) (*model.Report, error) {
	startTime := time.Now()
	report := &model.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: startTime,
		Tabs:        []model.TabResult{},
		Categories:  []model.Category{},
		Summary:     []model.SummaryEntry{},
		Warnings:    []model.Warning{},
	}

	c.sendProgress(progress, ProgressEvent{
		Type:    EventStart,
		Message: "Carregando dados da planilha",
		Percent: 0,
		Data:    map[string]string{"runId": report.RunID},
	})

	fail := func(err error) (*model.Report, error) {
		log.Printf("[importer] run %s falhou: %v", report.RunID, err)
		c.sendProgress(progress, ProgressEvent{Type: EventError, Message: err.Error(), Percent: 100})
		return nil, err
	}

	available, resolution, err := c.ResolveTabs(ctx)
	if err != nil {
		if !errors.Is(err, source.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", source.ErrSourceUnavailable, err)
		}
		return fail(err)
	}
	report.AvailableTabs = available
	report.Resolution = resolution

	c.sendProgress(progress, ProgressEvent{
		Type:    EventTabs,
		Message: fmt.Sprintf("%d abas encontradas, %d de %d resolvidas", len(available), len(resolution.Matches), len(c.opts.Tabs)),
		Percent: 10,
		Data:    resolution,
	})

	for _, name := range resolution.Missing {
		c.warn(report, progress, model.Warning{
			Kind:    model.WarningTabNotFound,
			Tab:     name,
			Message: fmt.Sprintf("Aba '%s' não encontrada na planilha.", name),
		}, 10)
	}
	if len(resolution.Matches) == 0 {
		return fail(fmt.Errorf("%w: nenhuma das abas configuradas foi encontrada", ErrEmptyResultSet))
	}

	n := len(c.opts.Tabs)
	for i, spec := range c.opts.Tabs {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		actual, ok := resolution.Lookup(spec.Name)
		if !ok {
			report.Tabs = append(report.Tabs, skippedTab(spec.Name, ""))
			continue
		}

		c.sendProgress(progress, ProgressEvent{
			Type:    EventTabStart,
			Message: fmt.Sprintf("Lendo aba '%s'", actual),
			Percent: tabPercent(i, n),
			Data:    model.TabMatch{Desired: spec.Name, Actual: actual},
		})

		result := c.loadTab(ctx, report, progress, spec, actual, tabPercent(i, n))
		report.Tabs = append(report.Tabs, result)

		c.sendProgress(progress, ProgressEvent{
			Type:    EventTabDone,
			Message: fmt.Sprintf("Aba '%s': %d registros", actual, result.Rows),
			Percent: tabPercent(i+1, n),
			Data: map[string]interface{}{
				"tab":    spec.Name,
				"status": result.Status,
				"rows":   result.Rows,
			},
		})
	}

	if report.LoadedTabs() == 0 {
		return fail(fmt.Errorf("%w: nenhuma aba pôde ser carregada", ErrEmptyResultSet))
	}
	if !hasRecords(report.Tabs) {
		return fail(fmt.Errorf("%w: nenhuma planilha foi carregada com sucesso", ErrEmptyResultSet))
	}

	c.buildCategories(report)
	report.Duration = time.Since(startTime)

	log.Printf("[importer] run %s: %d/%d abas carregadas, %d avisos em %v",
		report.RunID, report.LoadedTabs(), n, len(report.Warnings), report.Duration)

	c.sendProgress(progress, ProgressEvent{
		Type:    EventDone,
		Message: "Dados carregados",
		Percent: 100,
		Data:    classifier.CountByCategory(report.Categories),
	})
	return report, nil
}

// loadTab 读取并分类单个 aba；所有失败都降级为警告
func (c *Coordinator) loadTab(ctx context.Context, report *model.Report, progress func(ProgressEvent), spec TabSpec, actual string, percent int) model.TabResult {
	table, err := c.source.FetchRecords(ctx, actual)
	if err != nil {
		w := model.Warning{
			Kind:    model.WarningFetchFailed,
			Tab:     spec.Name,
			Message: fmt.Sprintf("Erro ao carregar a aba '%s': %v", actual, err),
		}
		if errors.Is(err, source.ErrTabNotFound) {
			w.Kind = model.WarningTabNotFound
			w.Message = fmt.Sprintf("Aba '%s' não encontrada na planilha.", actual)
		}
		c.warn(report, progress, w, percent)
		result := skippedTab(spec.Name, actual)
		result.Warnings = append(result.Warnings, w)
		return result
	}

	result := model.TabResult{
		Desired:  spec.Name,
		Actual:   actual,
		Status:   model.TabLoaded,
		Rows:     table.Len(),
		Columns:  table.Columns,
		Warnings: []model.Warning{},
	}
	if result.Columns == nil {
		result.Columns = []string{}
	}

	if table.Len() == 0 {
		w := model.Warning{
			Kind:    model.WarningEmptyTab,
			Tab:     spec.Name,
			Message: fmt.Sprintf("Aba '%s' não possui registros.", actual),
		}
		c.warn(report, progress, w, percent)
		result.Warnings = append(result.Warnings, w)
	}

	res, err := classifier.Classify(table, c.opts.Columns)
	if err != nil {
		w := model.Warning{Kind: model.WarningMissingColumn, Tab: spec.Name, Message: err.Error()}
		// 空表没有列可检查，只保留 empty_tab 警告
		if table.Len() > 0 || len(table.Columns) > 0 {
			c.warn(report, progress, w, percent)
			result.Warnings = append(result.Warnings, w)
		}
	}
	result.ApprovedUnresolved = res.ApprovedUnresolved
	result.Resolved = res.Resolved
	result.Pending = res.Pending
	return result
}

func (c *Coordinator) warn(report *model.Report, progress func(ProgressEvent), w model.Warning, percent int) {
	log.Printf("[importer] aviso %s: %s", w.Kind, w.Message)
	report.Warnings = append(report.Warnings, w)
	c.sendProgress(progress, ProgressEvent{
		Type:    EventWarning,
		Message: w.Message,
		Percent: percent,
		Data:    w,
	})
}

// buildCategories 展示表：每个 aba 的 deferido 未处理表，随后是 pending 表；
// 图表：每个 aba 的已处理数量 + pending 数量
func (c *Coordinator) buildCategories(report *model.Report) {
	var pendingIdx []int
	for i, spec := range c.opts.Tabs {
		if spec.Pending {
			pendingIdx = append(pendingIdx, i)
		}
	}

	for i, spec := range c.opts.Tabs {
		tab := report.Tabs[i]
		report.Categories = append(report.Categories,
			model.NewCategory(model.CategoryApprovedUnresolved, spec.Name, spec.Name, spec.Color, named(tab.ApprovedUnresolved, spec.Name)))
		report.Summary = append(report.Summary, model.SummaryEntry{
			Label: spec.Name,
			Count: tab.Resolved.Len(),
			Color: spec.Color,
		})
	}

	for _, i := range pendingIdx {
		spec, tab := c.opts.Tabs[i], report.Tabs[i]
		label := c.opts.PendingLabel
		if len(pendingIdx) > 1 {
			label = fmt.Sprintf("%s (%s)", c.opts.PendingLabel, spec.Name)
		}
		report.Categories = append(report.Categories,
			model.NewCategory(model.CategoryPending, label, spec.Name, c.opts.PendingColor, named(tab.Pending, label)))
		report.Summary = append(report.Summary, model.SummaryEntry{
			Label: label,
			Count: tab.Pending.Len(),
			Color: c.opts.PendingColor,
		})
	}
}

func hasRecords(tabs []model.TabResult) bool {
	for _, t := range tabs {
		if t.Status == model.TabLoaded && t.Rows > 0 {
			return true
		}
	}
	return false
}

func skippedTab(desired, actual string) model.TabResult {
	empty := model.Table{Name: desired, Columns: []string{}, Records: []model.Record{}}
	return model.TabResult{
		Desired:            desired,
		Actual:             actual,
		Status:             model.TabSkipped,
		Columns:            []string{},
		Warnings:           []model.Warning{},
		ApprovedUnresolved: empty,
		Resolved:           empty,
		Pending:            empty,
	}
}

func named(t model.Table, name string) model.Table {
	t.Name = name
	if t.Columns == nil {
		t.Columns = []string{}
	}
	if t.Records == nil {
		t.Records = []model.Record{}
	}
	return t
}
