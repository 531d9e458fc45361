package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"importacao/internal/auth"
	"importacao/internal/model"
)

// SheetsSource Google Sheets 表格（单个 spreadsheet）
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetsSource 使用 client_secret.json + token.json 创建数据源
func NewSheetsSource(ctx context.Context, opts Options) (*SheetsSource, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, unavailable("spreadsheet_id não configurado")
	}

	cfg, err := auth.Config(opts.CredentialsFile)
	if err != nil {
		return nil, unavailable("%v", err)
	}
	client, err := auth.Client(ctx, cfg, opts.TokenFile)
	if err != nil {
		return nil, unavailable("%v", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, unavailable("criar cliente do Google Sheets: %v", err)
	}
	return NewSheetsSourceWithService(svc, opts.SpreadsheetID), nil
}

// NewSheetsSourceWithService 使用已构造的 Sheets 服务（测试或自定义传输）
func NewSheetsSourceWithService(svc *sheets.Service, spreadsheetID string) *SheetsSource {
	return &SheetsSource{service: svc, spreadsheetID: spreadsheetID}
}

// ListTabs 列出 spreadsheet 的全部 aba
func (s *SheetsSource) ListTabs(ctx context.Context) ([]string, error) {
	ss, err := s.service.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		if apiStatus(err) == http.StatusNotFound {
			return nil, unavailable("planilha com ID %s não encontrada", s.spreadsheetID)
		}
		return nil, unavailable("listar abas: %v", err)
	}

	tabs := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh == nil || sh.Properties == nil {
			continue
		}
		tabs = append(tabs, sh.Properties.Title)
	}
	return tabs, nil
}

// FetchRecords 读取整个 aba 的格式化值
func (s *SheetsSource) FetchRecords(ctx context.Context, tab string) (model.Table, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, a1Range(tab)).
		ValueRenderOption("FORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		switch apiStatus(err) {
		case http.StatusBadRequest, http.StatusNotFound:
			// "Unable to parse range"：aba 在列出后被删除或改名
			return model.Table{}, fmt.Errorf("%w: %v", tabNotFound(tab), err)
		default:
			return model.Table{}, unavailable("ler aba %q: %v", tab, err)
		}
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, cells)
	}
	return TableFromRows(tab, rows), nil
}

// a1Range 整个 aba 的 A1 范围，名称用单引号包裹
func a1Range(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func apiStatus(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}
