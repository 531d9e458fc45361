package source

import (
	"bytes"
	"context"
	"os"

	"github.com/extrame/xls"

	"importacao/internal/model"
)

// XLSSource 旧格式 .xls 工作簿
type XLSSource struct {
	path string
}

// NewXLSSource 创建 xls 数据源
func NewXLSSource(path string) (*XLSSource, error) {
	if path == "" {
		return nil, unavailable("caminho do arquivo xls não configurado")
	}
	return &XLSSource{path: path}, nil
}

func (s *XLSSource) open() (*xls.WorkBook, error) {
	// xls.Open 不会关闭文件，整个读入内存后再解析
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, unavailable("arquivo %s: %v", s.path, err)
	}
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, unavailable("abrir %s: %v", s.path, err)
	}
	return wb, nil
}

// ListTabs 列出工作表
func (s *XLSSource) ListTabs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("%v", err)
	}
	wb, err := s.open()
	if err != nil {
		return nil, err
	}

	tabs := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		if sheet := wb.GetSheet(i); sheet != nil {
			tabs = append(tabs, sheet.Name)
		}
	}
	return tabs, nil
}

// FetchRecords 读取一个工作表（名称需与 ListTabs 返回值一致）
func (s *XLSSource) FetchRecords(ctx context.Context, tab string) (model.Table, error) {
	if err := ctx.Err(); err != nil {
		return model.Table{}, unavailable("%v", err)
	}
	wb, err := s.open()
	if err != nil {
		return model.Table{}, err
	}

	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil || sheet.Name != tab {
			continue
		}
		return TableFromRows(tab, readXLSRows(sheet)), nil
	}
	return model.Table{}, tabNotFound(tab)
}

func readXLSRows(sheet *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, []string{})
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return rows
}
