package source

import (
	"context"
	"os"

	"github.com/xuri/excelize/v2"

	"importacao/internal/model"
)

// XLSXSource 本地 .xlsx 工作簿（例如从 Google Sheets 下载的副本）
//
// 每次调用都重新打开文件，页面刷新即可看到最新内容。
type XLSXSource struct {
	path string
}

// NewXLSXSource 创建 xlsx 数据源
func NewXLSXSource(path string) (*XLSXSource, error) {
	if path == "" {
		return nil, unavailable("caminho do arquivo xlsx não configurado")
	}
	return &XLSXSource{path: path}, nil
}

func (s *XLSXSource) open() (*excelize.File, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, unavailable("arquivo %s: %v", s.path, err)
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, unavailable("abrir %s: %v", s.path, err)
	}
	return f, nil
}

// ListTabs 列出工作表
func (s *XLSXSource) ListTabs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("%v", err)
	}
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// FetchRecords 读取一个工作表
func (s *XLSXSource) FetchRecords(ctx context.Context, tab string) (model.Table, error) {
	if err := ctx.Err(); err != nil {
		return model.Table{}, unavailable("%v", err)
	}
	f, err := s.open()
	if err != nil {
		return model.Table{}, err
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(tab); err != nil || idx < 0 {
		return model.Table{}, tabNotFound(tab)
	}

	rows, err := f.GetRows(tab)
	if err != nil {
		return model.Table{}, unavailable("ler aba %q: %v", tab, err)
	}
	return TableFromRows(tab, rows), nil
}
