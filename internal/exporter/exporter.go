package exporter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"importacao/internal/model"
)

const (
	// SummarySheet 汇总 sheet 名称
	SummarySheet = "Importações"
	// WarningsSheet 警告 sheet 名称（仅在有警告时生成）
	WarningsSheet = "Avisos"

	maxSheetNameLen = 31
)

// Exporter 看板导出器：汇总 + 图表 + 每个展示分类一个 sheet
type Exporter struct {
	chartTitle string
}

// NewExporter 创建导出器
func NewExporter(chartTitle string) *Exporter {
	if strings.TrimSpace(chartTitle) == "" {
		chartTitle = "Importações por Categoria"
	}
	return &Exporter{chartTitle: chartTitle}
}

// Export 导出 Excel
func (e *Exporter) Export(report *model.Report) (*excelize.File, error) {
	return e.ExportWithProgress(report, nil)
}

// ExportWithProgress 导出 Excel，并回调进度
func (e *Exporter) ExportWithProgress(report *model.Report, progress func(ProgressEvent)) (*excelize.File, error) {
	if report == nil {
		return nil, fmt.Errorf("relatório vazio")
	}

	f := excelize.NewFile()
	notify(progress, 0, StageSummary, SummarySheet)

	// 默认的 Sheet1 改名为汇总
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("criar aba de resumo: %w", err)
	}
	if err := e.writeSummary(f, report.Summary); err != nil {
		_ = f.Close()
		return nil, err
	}
	notify(progress, 20, StageChart, SummarySheet)

	if err := e.addChart(f, report.Summary); err != nil {
		_ = f.Close()
		return nil, err
	}

	used := map[string]bool{strings.ToLower(SummarySheet): true, strings.ToLower(WarningsSheet): true}
	total := len(report.Categories)
	for i, c := range report.Categories {
		name := SheetName(c.Label, used)
		if err := writeTable(f, name, c.Table); err != nil {
			_ = f.Close()
			return nil, err
		}
		notify(progress, 30+60*(i+1)/max(total, 1), StageSheet, name)
	}

	if len(report.Warnings) > 0 {
		notify(progress, 95, StageWarnings, WarningsSheet)
		if err := writeWarnings(f, report.Warnings); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	notify(progress, 100, StageDone, "")
	return f, nil
}

func (e *Exporter) writeSummary(f *excelize.File, summary []model.SummaryEntry) error {
	rows := [][]interface{}{{"Categoria", "Quantidade"}}
	for _, s := range summary {
		rows = append(rows, []interface{}{s.Label, s.Count})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("escrever resumo: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("estilo do cabeçalho: %w", err)
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("estilo do cabeçalho: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 32)
}

// addChart 簇状柱形图，每个分类一个系列，颜色取自配置
func (e *Exporter) addChart(f *excelize.File, summary []model.SummaryEntry) error {
	if len(summary) == 0 {
		return nil
	}

	series := make([]excelize.ChartSeries, 0, len(summary))
	for i, s := range summary {
		row := i + 2
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$A$%d", SummarySheet, row),
			Categories: fmt.Sprintf("'%s'!$B$1", SummarySheet),
			Values:     fmt.Sprintf("'%s'!$B$%d", SummarySheet, row),
			Fill: excelize.Fill{
				Type:    "pattern",
				Color:   []string{model.ColorHex(s.Color)},
				Pattern: 1,
			},
		})
	}

	err := f.AddChart(SummarySheet, "D2", &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: e.chartTitle}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		PlotArea: excelize.ChartPlotArea{
			ShowVal: true,
		},
		Dimension: excelize.ChartDimension{Width: 640, Height: 360},
	})
	if err != nil {
		return fmt.Errorf("criar gráfico: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, t model.Table) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("criar aba %q: %w", sheet, err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if len(header) > 0 {
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("escrever cabeçalho de %q: %w", sheet, err)
		}
	}

	for i, r := range t.Rows() {
		row := make([]interface{}, len(r))
		for j, v := range r {
			row[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("escrever linha %d de %q: %w", i+2, sheet, err)
		}
	}
	return nil
}

func writeWarnings(f *excelize.File, warnings []model.Warning) error {
	t := model.Table{Name: WarningsSheet, Columns: []string{"Tipo", "Aba", "Mensagem"}}
	for _, w := range warnings {
		t.Records = append(t.Records, model.Record{
			"Tipo":     string(w.Kind),
			"Aba":      w.Tab,
			"Mensagem": w.Message,
		})
	}
	return writeTable(f, WarningsSheet, t)
}

// SheetName 生成合法且不重复的 sheet 名称（Excel 不允许 : \ / ? * [ ]，最长 31 个字符），
// 并记录到 used（小写）
func SheetName(label string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(label))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Aba"
	}
	base = truncateRunes(base, maxSheetNameLen)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, maxSheetNameLen-utf8.RuneCountInString(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
