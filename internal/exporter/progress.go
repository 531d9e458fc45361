package exporter

// ProgressEvent 导出进度
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`           // summary / chart / sheet / warnings / done
	Sheet   string `json:"sheet,omitempty"` // 正在写入的 sheet
}

const (
	StageSummary  = "summary"
	StageChart    = "chart"
	StageSheet    = "sheet"
	StageWarnings = "warnings"
	StageDone     = "done"
)

func notify(progress func(ProgressEvent), percent int, stage, sheet string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{Percent: min(max(percent, 0), 100), Stage: stage, Sheet: sheet})
}
