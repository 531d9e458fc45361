package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"importacao/internal/classifier"
	"importacao/internal/config"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	SourceKind    string             `json:"sourceKind"`    // 数据源类型
	SpreadsheetID string             `json:"spreadsheetId"` // sheets 数据源的 ID
	Tabs          []config.TabConfig `json:"tabs"`          // 配置的 aba
	Columns       classifier.Columns `json:"columns"`       // 分类列
	PendingLabel  string             `json:"pendingLabel"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		SourceKind:    h.cfg.Source.Kind,
		SpreadsheetID: h.cfg.Source.SpreadsheetID,
		Tabs:          h.cfg.Tabs,
		Columns:       h.cfg.Columns,
		PendingLabel:  h.cfg.Dashboard.PendingLabel,
	})
}
