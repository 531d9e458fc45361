package source

import (
	"strings"

	"importacao/internal/model"
)

// TableFromRows 首行作为表头构造 Table（与 get_all_records 一致）
//
// 空表头的列被忽略；重复表头保留第一次出现的列；整行为空的行被丢弃；短行按空串补齐。
func TableFromRows(name string, rows [][]string) model.Table {
	table := model.Table{
		Name:    name,
		Columns: []string{},
		Records: []model.Record{},
	}
	if len(rows) == 0 {
		return table
	}

	type column struct {
		index int
		name  string
	}

	seen := make(map[string]struct{})
	cols := make([]column, 0, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		cols = append(cols, column{index: i, name: h})
		table.Columns = append(table.Columns, h)
	}

	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(model.Record, len(cols))
		for _, c := range cols {
			rec[c.name] = cellAt(row, c.index)
		}
		table.Records = append(table.Records, rec)
	}

	return table
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
