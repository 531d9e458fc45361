package api

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"importacao/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export 执行一次新的运行并直接下载 Excel
// GET /api/export
func (h *Handler) Export(c *gin.Context) {
	report, err := h.Coordinator().Run(c.Request.Context(), nil)
	if err != nil {
		h.fail(c, err)
		return
	}

	file, err := h.newExporter().Export(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "falha ao gerar planilha: " + err.Error(), Kind: "internal"})
		return
	}
	defer file.Close()

	buf, err := file.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "falha ao gerar planilha: " + err.Error(), Kind: "internal"})
		return
	}

	c.Header("Content-Disposition", buildExportContentDisposition(exportFilename(report)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// DownloadExport 下载导出的 Excel 文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "token ausente", Kind: "bad_request"})
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "link de download expirado", Kind: "not_found"})
		return
	}
	defer removeFile(item.filePath)

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "arquivo exportado não encontrado", Kind: "not_found"})
		return
	}

	c.Header("Content-Disposition", buildExportContentDisposition(item.filename))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)
}

// saveForDownload 写入临时文件并登记一次性下载链接
func (h *Handler) saveForDownload(file *excelize.File, report *model.Report) (string, error) {
	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("importacao_export_%s.xlsx", report.RunID))
	if err := file.SaveAs(tempPath); err != nil {
		removeFile(tempPath)
		return "", err
	}
	return h.downloads.put(tempPath, exportFilename(report), downloadTTL), nil
}

func exportFilename(report *model.Report) string {
	ts := report.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return fmt.Sprintf("importacoes-%s.xlsx", ts.Format("20060102-150405"))
}

func buildExportContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", filename, url.PathEscape(filename))
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[api] remover %s: %v", path, err)
	}
}
