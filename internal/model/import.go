package model

import "time"

// TabMatch 配置中的 aba 名称 -> 数据源中的实际名称
type TabMatch struct {
	Desired string `json:"desired"`
	Actual  string `json:"actual"`
}

// Resolution aba 名称解析结果：每个期望名称要么在 Matches，要么在 Missing
type Resolution struct {
	Matches []TabMatch `json:"matches"`
	Missing []string   `json:"missing"`
}

// Resolved 期望名称 -> 实际名称
func (r Resolution) Resolved() map[string]string {
	out := make(map[string]string, len(r.Matches))
	for _, m := range r.Matches {
		out[m.Desired] = m.Actual
	}
	return out
}

// Lookup 查询期望名称对应的实际名称
func (r Resolution) Lookup(desired string) (string, bool) {
	for _, m := range r.Matches {
		if m.Desired == desired {
			return m.Actual, true
		}
	}
	return "", false
}

// WarningKind 警告类型
type WarningKind string

const (
	WarningTabNotFound   WarningKind = "tab_not_found"
	WarningFetchFailed   WarningKind = "fetch_failed"
	WarningMissingColumn WarningKind = "missing_column"
	WarningEmptyTab      WarningKind = "empty_tab"
)

// Warning 可恢复的问题（单个 aba 范围内）
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Tab     string      `json:"tab"`
	Message string      `json:"message"`
}

// TabStatus 单个 aba 的处理状态
type TabStatus string

const (
	TabLoaded  TabStatus = "loaded"
	TabSkipped TabStatus = "skipped"
)

// TabResult 单个 aba 的加载与分类结果
type TabResult struct {
	Desired  string    `json:"desired"`
	Actual   string    `json:"actual"`
	Status   TabStatus `json:"status"`
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	Warnings []Warning `json:"warnings,omitempty"`

	ApprovedUnresolved Table `json:"approvedUnresolved"`
	Resolved           Table `json:"resolved"`
	Pending            Table `json:"pending"`
}

// Report 一次运行的完整产物
type Report struct {
	RunID         string         `json:"runId"`
	GeneratedAt   time.Time      `json:"generatedAt"`
	Duration      time.Duration  `json:"duration"`
	AvailableTabs []string       `json:"availableTabs"`
	Resolution    Resolution     `json:"resolution"`
	Tabs          []TabResult    `json:"tabs"`
	Categories    []Category     `json:"categories"`
	Summary       []SummaryEntry `json:"summary"`
	Warnings      []Warning      `json:"warnings"`
}

// LoadedTabs 成功加载的 aba 数
func (r *Report) LoadedTabs() int {
	n := 0
	for _, t := range r.Tabs {
		if t.Status == TabLoaded {
			n++
		}
	}
	return n
}
