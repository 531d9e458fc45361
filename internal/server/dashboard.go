package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"importacao/internal/api"
	"importacao/internal/model"
)

// dashboardView 看板页面数据
type dashboardView struct {
	Title         string
	Footer        string
	Error         string
	ErrorKind     string
	Report        *model.Report
	Resolved      []model.TabMatch
	AvailableTabs []string
	Warnings      []model.Warning
	Tables        []tableView
	Chart         Chart
	GeneratedAt   string
}

type tableView struct {
	Label   string
	Color   string
	Columns []string
	Rows    [][]string
	Total   int
}

var templateFuncs = template.FuncMap{
	"f1":   func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"join": strings.Join,
	"warningClass": func(k model.WarningKind) string {
		return strings.ReplaceAll(string(k), "_", "-")
	},
}

// Dashboard 执行一次运行并渲染看板
// GET /
func (s *Server) Dashboard(c *gin.Context) {
	view := dashboardView{
		Title:  s.cfg.Dashboard.Title,
		Footer: s.cfg.Dashboard.Footer,
	}

	report, err := s.api.Coordinator().Run(c.Request.Context(), nil)
	if err != nil {
		kind, status := api.ErrorKind(err)
		view.Error = errorMessage(kind, err)
		view.ErrorKind = kind
		c.HTML(status, "dashboard.html", view)
		return
	}

	view.Report = report
	view.Resolved = report.Resolution.Matches
	view.AvailableTabs = report.AvailableTabs
	view.Warnings = report.Warnings
	view.GeneratedAt = report.GeneratedAt.Format("02/01/2006 15:04:05")
	for _, cat := range report.Categories {
		view.Tables = append(view.Tables, tableView{
			Label:   cat.Label,
			Color:   "#" + model.ColorHex(cat.Color),
			Columns: cat.Table.Columns,
			Rows:    cat.Table.Rows(),
			Total:   cat.Count,
		})
	}
	view.Chart = BuildChart(s.cfg.Dashboard.ChartTitle, report.Summary)

	c.HTML(http.StatusOK, "dashboard.html", view)
}

func errorMessage(kind string, err error) string {
	switch kind {
	case "source_unavailable":
		return "Não foi possível acessar a planilha: " + err.Error()
	case "empty_result_set":
		return "Nenhuma aba pôde ser carregada: " + err.Error()
	default:
		return "Erro inesperado: " + err.Error()
	}
}
