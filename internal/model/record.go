package model

// Record 一行数据：列名 -> 单元格文本（缺失的键等价于空字符串）
type Record map[string]string

// Get 读取列值，列不存在时返回空字符串
func (r Record) Get(column string) string {
	if r == nil {
		return ""
	}
	return r[column]
}

// Has 判断记录是否包含该列
func (r Record) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Table 一个工作表（aba）的全部记录，保持来源顺序
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"` // 表头，来源顺序
	Records []Record `json:"records"`
}

// Len 记录数
func (t Table) Len() int {
	return len(t.Records)
}

// HasColumn 表头或任一记录包含该列即视为存在
func (t Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	for _, r := range t.Records {
		if r.Has(column) {
			return true
		}
	}
	return false
}

// Derive 以相同表名与表头构造子表
func (t Table) Derive(records []Record) Table {
	columns := make([]string, len(t.Columns))
	copy(columns, t.Columns)
	if records == nil {
		records = []Record{}
	}
	return Table{
		Name:    t.Name,
		Columns: columns,
		Records: records,
	}
}

// Rows 按表头顺序展开为二维文本（用于渲染与导出）
func (t Table) Rows() [][]string {
	out := make([][]string, 0, len(t.Records))
	for _, r := range t.Records {
		row := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			row[i] = r.Get(c)
		}
		out = append(out, row)
	}
	return out
}
