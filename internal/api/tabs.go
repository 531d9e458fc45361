package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"importacao/internal/model"
	"importacao/internal/source"
)

// TabsResponse aba 列表与解析结果
type TabsResponse struct {
	Available  []string         `json:"available"`
	Resolution model.Resolution `json:"resolution"`
}

// ListTabs 列出数据源中的 aba 并解析配置名称
// GET /api/tabs
func (h *Handler) ListTabs(c *gin.Context) {
	available, resolution, err := h.Coordinator().ResolveTabs(c.Request.Context())
	if err != nil {
		if !errors.Is(err, source.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", source.ErrSourceUnavailable, err)
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TabsResponse{
		Available:  available,
		Resolution: resolution,
	})
}
