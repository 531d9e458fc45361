// Package api 导入看板的 JSON / SSE 接口。
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"importacao/internal/config"
	"importacao/internal/exporter"
	"importacao/internal/importer"
	"importacao/internal/source"
)

// Handler API 处理器
type Handler struct {
	source    source.Source
	cfg       *config.AppConfig
	downloads *exportDownloadStore
}

// NewHandler 创建 API 处理器；src 在进程内共享且只读
func NewHandler(src source.Source, cfg *config.AppConfig) *Handler {
	return &Handler{
		source:    src,
		cfg:       cfg,
		downloads: newExportDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	// aba 列表与名称解析
	router.GET("/tabs", h.ListTabs)

	// 看板数据
	router.GET("/report", h.GetReport)
	router.POST("/report/stream", h.ReportStream)

	// 导出
	router.GET("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}

// Coordinator 每次请求一个独立的运行
func (h *Handler) Coordinator() *importer.Coordinator {
	return importer.NewCoordinator(h.source, importer.OptionsFromConfig(h.cfg))
}

func (h *Handler) newExporter() *exporter.Exporter {
	return exporter.NewExporter(h.cfg.Dashboard.ChartTitle)
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ErrorKind 致命错误的类别与 HTTP 状态码
func ErrorKind(err error) (string, int) {
	switch {
	case errors.Is(err, source.ErrSourceUnavailable):
		return "source_unavailable", http.StatusBadGateway
	case errors.Is(err, importer.ErrEmptyResultSet):
		return "empty_result_set", http.StatusUnprocessableEntity
	default:
		return "internal", http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	kind, status := ErrorKind(err)
	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: kind})
}
