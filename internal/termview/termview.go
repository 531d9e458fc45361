// Package termview 在终端中输出运行结果（check / tabs 命令）。
package termview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"importacao/internal/model"
)

const maxBarWidth = 30

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)

	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E7D32"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9A825"))
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#D93025")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#D93025")).
			Padding(0, 1)
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

// Report 运行摘要：解析结果、警告、各分类数量与柱状图
func Report(title string, r *model.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	var tabs []string
	for _, m := range r.Resolution.Matches {
		tabs = append(tabs, okStyle.Render("✔ ")+fmt.Sprintf("%s → %s", m.Desired, m.Actual))
	}
	for _, w := range r.Warnings {
		tabs = append(tabs, warnStyle.Render("! ")+w.Message)
	}
	b.WriteString(boxStyle.Render(strings.Join(tabs, "\n")))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, c := range r.Categories {
		labelWidth = max(labelWidth, lipgloss.Width(c.Label))
	}
	var cats []string
	for _, c := range r.Categories {
		cats = append(cats, fmt.Sprintf("%s %5d", padRight(c.Label, labelWidth), c.Count))
	}
	b.WriteString(boxStyle.Render("Tabelas\n" + strings.Join(cats, "\n")))
	b.WriteString("\n\n")

	b.WriteString(Chart(r.Summary))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("run %s · %d/%d abas · %v",
		r.RunID, r.LoadedTabs(), len(r.Tabs), r.Duration.Round(1e6))))
	b.WriteString("\n")
	return b.String()
}

// Chart 横向柱状图，颜色取自汇总项
func Chart(summary []model.SummaryEntry) string {
	maxCount, labelWidth := 0, 0
	for _, s := range summary {
		maxCount = max(maxCount, s.Count)
		labelWidth = max(labelWidth, lipgloss.Width(s.Label))
	}

	lines := make([]string, 0, len(summary))
	for _, s := range summary {
		width := 0
		if maxCount > 0 {
			width = s.Count * maxBarWidth / maxCount
		}
		if s.Count > 0 && width == 0 {
			width = 1
		}
		bar := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#" + model.ColorHex(s.Color))).
			Render(strings.Repeat("█", width))
		lines = append(lines, fmt.Sprintf("%s %s %d", padRight(s.Label, labelWidth), bar, s.Count))
	}
	return strings.Join(lines, "\n")
}

// Tabs aba 列表与名称解析
func Tabs(available []string, res model.Resolution) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Abas disponíveis"))
	b.WriteString("\n")
	for _, t := range available {
		b.WriteString(fmt.Sprintf("  %q\n", t))
	}
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Resolução"))
	b.WriteString("\n")
	for _, m := range res.Matches {
		b.WriteString(okStyle.Render("  ✔ ") + fmt.Sprintf("%s → %q\n", m.Desired, m.Actual))
	}
	for _, name := range res.Missing {
		b.WriteString(warnStyle.Render("  ✘ ") + fmt.Sprintf("%s não encontrada\n", name))
	}
	return b.String()
}

// Error 致命错误
func Error(err error) string {
	return errorStyle.Render("Erro: " + err.Error())
}

// padRight 按显示宽度补齐
func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}
