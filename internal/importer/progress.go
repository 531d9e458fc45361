package importer

import "time"

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/tabs/tab_start/tab_done/warning/export/done/error
	Message   string      `json:"message"`   // 事件消息
	Percent   int         `json:"percent"`   // 0-100
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

const (
	EventStart    = "start"
	EventTabs     = "tabs"
	EventTabStart = "tab_start"
	EventTabDone  = "tab_done"
	EventWarning  = "warning"
	EventExport   = "export" // 由 api 在生成下载文件时发送
	EventDone     = "done"
	EventError    = "error"
)

func (c *Coordinator) sendProgress(progress func(ProgressEvent), ev ProgressEvent) {
	if progress == nil {
		return
	}
	if ev.Percent < 0 {
		ev.Percent = 0
	}
	if ev.Percent > 100 {
		ev.Percent = 100
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	progress(ev)
}

// tabPercent 第 i 个 aba（从 0 开始）处理前后的进度；列表阶段占 10%，汇总占最后 10%
func tabPercent(i, n int) int {
	if n <= 0 {
		return 90
	}
	return 10 + 80*i/n
}
