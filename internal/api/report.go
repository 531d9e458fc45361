package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"importacao/internal/exporter"
	"importacao/internal/importer"
	"importacao/internal/model"
)

// GetReport 执行一次运行并返回完整报告
// GET /api/report
func (h *Handler) GetReport(c *gin.Context) {
	report, err := h.Coordinator().Run(c.Request.Context(), nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// StreamDone SSE done 事件的数据
type StreamDone struct {
	Report      *model.Report `json:"report"`
	DownloadURL string        `json:"downloadUrl"`
}

// ReportStream 执行一次运行（SSE 进度 + 完成后返回报告与下载地址）
// POST /api/report/stream
func (h *Handler) ReportStream(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "streaming não suportado", Kind: "internal"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event importer.ProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			log.Printf("[api] serializar evento %s: %v", event.Type, err)
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	// done / error 由本处理器在运行结束后发送
	forward := func(event importer.ProgressEvent) {
		if event.Type == importer.EventDone || event.Type == importer.EventError {
			return
		}
		send(event)
	}

	report, err := h.Coordinator().Run(c.Request.Context(), forward)
	if err != nil {
		kind, status := ErrorKind(err)
		send(importer.ProgressEvent{
			Type:      importer.EventError,
			Message:   err.Error(),
			Percent:   100,
			Data:      map[string]any{"kind": kind, "status": status},
			Timestamp: time.Now(),
		})
		return
	}

	done := StreamDone{Report: report}
	message := "Dados carregados"
	exportProgress := func(ev exporter.ProgressEvent) {
		send(importer.ProgressEvent{
			Type:      importer.EventExport,
			Message:   "Gerando planilha: " + ev.Stage,
			Percent:   min(90+ev.Percent/10, 99),
			Data:      ev,
			Timestamp: time.Now(),
		})
	}
	if file, err := h.newExporter().ExportWithProgress(report, exportProgress); err != nil {
		message = "Dados carregados; falha ao gerar planilha: " + err.Error()
	} else {
		token, err := h.saveForDownload(file, report)
		_ = file.Close()
		if err != nil {
			message = "Dados carregados; falha ao gravar planilha: " + err.Error()
		} else {
			done.DownloadURL = downloadPrefix(c) + "/export/download/" + token
		}
	}

	send(importer.ProgressEvent{
		Type:      importer.EventDone,
		Message:   message,
		Percent:   100,
		Data:      done,
		Timestamp: time.Now(),
	})
}

// downloadPrefix 当前路由组前缀（/api）
func downloadPrefix(c *gin.Context) string {
	path := c.FullPath()
	if i := strings.Index(path, "/report/stream"); i >= 0 {
		return path[:i]
	}
	return "/api"
}
